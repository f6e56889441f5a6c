package query

import (
	"context"
	"strconv"
	"time"
)

// ScalarKind tags the runtime type of a result cell. Query shapes are only
// known at execution time, so rows are never mapped onto static records.
type ScalarKind int

const (
	KindNull ScalarKind = iota
	KindText
	KindNumber
	KindBool
	KindTime
)

type Scalar struct {
	Kind   ScalarKind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

func Null() Scalar            { return Scalar{Kind: KindNull} }
func Text(v string) Scalar    { return Scalar{Kind: KindText, Text: v} }
func Number(v float64) Scalar { return Scalar{Kind: KindNumber, Number: v} }
func Bool(v bool) Scalar      { return Scalar{Kind: KindBool, Bool: v} }
func Time(v time.Time) Scalar { return Scalar{Kind: KindTime, Time: v} }

// String renders a stable textual form used for answer prompts and logs.
func (s Scalar) String() string {
	switch s.Kind {
	case KindText:
		return s.Text
	case KindNumber:
		return strconv.FormatFloat(s.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.Bool)
	case KindTime:
		return s.Time.Format(time.RFC3339)
	default:
		return "null"
	}
}

// Result holds rows in the execution engine's native column order.
type Result struct {
	Columns  []string
	Rows     [][]Scalar
	Duration time.Duration
}

type Executor interface {
	Execute(ctx context.Context, sql string) (Result, error)
}
