package formula

import (
	"math"
	"strings"
	"testing"

	"github.com/adlabtools/kwopt/pkg/keywords"
)

func testContext() *Context {
	ctx := NewContext()
	ctx.Set("test", 3)
	return ctx
}

func checkRoundTrip(t *testing.T, input string) {
	t.Helper()
	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	if got := expr.String(); got != input {
		t.Fatalf("round trip of %q produced %q", input, got)
	}
}

func checkEval(t *testing.T, input string, want float64) {
	t.Helper()
	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	got, err := expr.Eval(testContext())
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", input, err)
	}
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("Eval(%q) = %v, want %v", input, got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []string{
		"1",
		"test",
		"3+8",
		"3+4*2",
		"3+test*2",
		"(3+test*2)/2",
		"3+8-2",
		"10/2/5",
		"1-2+3",
		"(3+4)*2",
		"mean.clicksPerDay/mean.averageCpc",
	} {
		checkRoundTrip(t, f)
	}
}

func TestEval(t *testing.T) {
	checkEval(t, "1", 1)
	checkEval(t, "test", 3)
	checkEval(t, "3+8", 11)
	checkEval(t, "3+4*2", 11)
	checkEval(t, "(3+4)*2", 14)
	checkEval(t, "3+test*2", 9)
	checkEval(t, "(3+test*2)/2", 4.5)
	checkEval(t, "10-3-2", 5)
	checkEval(t, "100/5/2", 10)
	checkEval(t, "1-2+3", 2)
}

func TestDivisionByZeroYieldsNaN(t *testing.T) {
	expr, err := Parse("1/0")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	got, err := expr.Eval(testContext())
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if !math.IsNaN(got) {
		t.Fatalf("expected NaN for infinite division result, got %v", got)
	}
}

func TestUnknownIdentifierIsNaN(t *testing.T) {
	expr, err := Parse("nosuchvariable+1")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	got, err := expr.Eval(testContext())
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "%", "3+", "(3+8", "3++4", ")", "1.2.3"} {
		_, err := Parse(input)
		if err == nil {
			t.Fatalf("Parse(%q): expected error", input)
		}
		if !strings.Contains(err.Error(), input) {
			t.Fatalf("Parse(%q): error %q does not echo the input", input, err)
		}
		var perr *ParseError
		if !errorsAs(err, &perr) {
			t.Fatalf("Parse(%q): expected *ParseError, got %T", input, err)
		}
	}
}

// errorsAs avoids importing errors just for one assertion.
func errorsAs(err error, target **ParseError) bool {
	p, ok := err.(*ParseError)
	if ok {
		*target = p
	}
	return ok
}

func TestEstimateContext(t *testing.T) {
	min := keywords.StatsEstimate{
		ClicksPerDay: keywords.Float64Ptr(10),
		AverageCpc:   keywords.MoneyPtr(keywords.MoneyFromUnits(2)),
	}
	max := keywords.StatsEstimate{
		ClicksPerDay: keywords.Float64Ptr(20),
		AverageCpc:   keywords.MoneyPtr(keywords.MoneyFromUnits(4)),
	}
	ctx := NewEstimateContext(keywords.NewTrafficEstimate(min, max))

	if got := ctx.Value("mean.clicksPerDay"); got != 15 {
		t.Fatalf("mean.clicksPerDay = %v, want 15", got)
	}
	if got := ctx.Value("min.averageCpc"); got != 2 {
		t.Fatalf("min.averageCpc = %v, want 2 (micros converted to units)", got)
	}
	if got := ctx.Value("max.impressionsPerDay"); !math.IsNaN(got) {
		t.Fatalf("absent field should be NaN, got %v", got)
	}

	expr, err := Parse("mean.clicksPerDay/mean.averageCpc")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	got, err := expr.Eval(ctx)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected 15/3=5, got %v", got)
	}
}

func TestNilEstimateContext(t *testing.T) {
	ctx := NewEstimateContext(nil)
	if !math.IsNaN(ctx.Value("mean.clicksPerDay")) {
		t.Fatal("expected NaN from empty context")
	}
}
