package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/vine/pkg/domain"
	lua "github.com/yuin/gopher-lua"
)

// args reads the arguments of one capability call. The first problem found
// is kept in err; later reads return zero values without overwriting it.
type args struct {
	L    *lua.LState
	name string
	err  *domain.CapabilityArgumentError
}

func newArgs(L *lua.LState, name string) *args {
	return &args{L: L, name: name}
}

func (a *args) failed() bool { return a.err != nil }

func (a *args) fail(n int, format string, v ...any) {
	if a.err != nil {
		return
	}
	a.err = &domain.CapabilityArgumentError{Capability: a.name, Arg: n, Reason: fmt.Sprintf(format, v...)}
}

func (a *args) count() int { return a.L.GetTop() }

func (a *args) absent(n int) bool {
	return n > a.L.GetTop() || a.L.Get(n) == lua.LNil
}

func typeName(v lua.LValue) string {
	if v == lua.LNil {
		return "no value"
	}
	return v.Type().String()
}

// str reads a required string; numbers are accepted as Lua would coerce them.
func (a *args) str(n int) string {
	switch v := a.L.Get(n).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	default:
		a.fail(n, "string expected, got %s", typeName(v))
		return ""
	}
}

func (a *args) optStr(n int, def string) string {
	if a.absent(n) {
		return def
	}
	return a.str(n)
}

// num reads a required number; numeric strings are accepted.
func (a *args) num(n int) float64 {
	switch v := a.L.Get(n).(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			a.fail(n, "number expected, got string %q", string(v))
			return 0
		}
		return f
	default:
		a.fail(n, "number expected, got %s", typeName(v))
		return 0
	}
}

func (a *args) optNum(n int, def float64) float64 {
	if a.absent(n) {
		return def
	}
	return a.num(n)
}

// integer reads a required number that must have an integral value.
func (a *args) integer(n int) int {
	f := a.num(n)
	if a.failed() {
		return 0
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		a.fail(n, "number has no integer representation")
		return 0
	}
	return int(f)
}

func (a *args) optInt(n int, def int) int {
	if a.absent(n) {
		return def
	}
	return a.integer(n)
}

// boolean reads an argument by Lua truthiness; it never fails.
func (a *args) boolean(n int) bool {
	return lua.LVAsBool(a.L.Get(n))
}

func (a *args) optBool(n int, def bool) bool {
	if a.absent(n) {
		return def
	}
	return a.boolean(n)
}

// colorTable reads a 3 or 4 element sequence at n. Alpha defaults to 1.
func (a *args) colorTable(n int) domain.Color {
	tbl, ok := a.L.Get(n).(*lua.LTable)
	if !ok {
		a.fail(n, "colour table expected, got %s", typeName(a.L.Get(n)))
		return domain.Color{}
	}
	size := tbl.Len()
	if size != 3 && size != 4 {
		a.fail(n, "colour table needs 3 or 4 components, got %d", size)
		return domain.Color{}
	}
	comps := make([]float64, 0, size)
	for i := 1; i <= size; i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LNumber:
			comps = append(comps, float64(v))
		case lua.LString:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
			if err != nil {
				a.fail(n, "colour component %d is not a number", i)
				return domain.Color{}
			}
			comps = append(comps, f)
		default:
			a.fail(n, "colour component %d is %s, want number", i, typeName(v))
			return domain.Color{}
		}
	}
	c, err := domain.ColorFromSlice(comps)
	if err != nil {
		a.fail(n, "%v", err)
	}
	return c
}

// color reads a colour starting at n, either as a table or as 3 or 4
// positional numbers. A fourth positional value is taken as alpha when it
// is a number or a numeric string; anything else is left for the next
// argument. It returns the colour and the index of the first argument
// after it.
func (a *args) color(n int) (domain.Color, int) {
	if _, ok := a.L.Get(n).(*lua.LTable); ok {
		return a.colorTable(n), n + 1
	}
	c := domain.Color{R: a.num(n), G: a.num(n + 1), B: a.num(n + 2), A: 1}
	if isNumeric(a.L.Get(n + 3)) {
		c.A = a.num(n + 3)
		return c, n + 4
	}
	return c, n + 3
}

// colorLast reads a colour that is the final argument of a call. Any
// fourth positional value is alpha and must be numeric.
func (a *args) colorLast(n int) domain.Color {
	if _, ok := a.L.Get(n).(*lua.LTable); ok {
		return a.colorTable(n)
	}
	c := domain.Color{R: a.num(n), G: a.num(n + 1), B: a.num(n + 2), A: 1}
	if !a.absent(n + 3) {
		c.A = a.num(n + 3)
	}
	return c
}

func isNumeric(v lua.LValue) bool {
	switch v := v.(type) {
	case lua.LNumber:
		return true
	case lua.LString:
		_, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return err == nil
	}
	return false
}

// vec2 reads an (x, y) pair at n.
func (a *args) vec2(n int) domain.Vec2 {
	return domain.Vec2{X: a.num(n), Y: a.num(n + 1)}
}

func pushColor(L *lua.LState, c domain.Color) {
	tbl := L.CreateTable(4, 0)
	tbl.RawSetInt(1, lua.LNumber(c.R))
	tbl.RawSetInt(2, lua.LNumber(c.G))
	tbl.RawSetInt(3, lua.LNumber(c.B))
	tbl.RawSetInt(4, lua.LNumber(c.A))
	L.Push(tbl)
}

func pushColor3(L *lua.LState, c domain.Color) {
	tbl := L.CreateTable(3, 0)
	tbl.RawSetInt(1, lua.LNumber(c.R))
	tbl.RawSetInt(2, lua.LNumber(c.G))
	tbl.RawSetInt(3, lua.LNumber(c.B))
	L.Push(tbl)
}
