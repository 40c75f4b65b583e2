package lightlab

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// FloatField is a slider over [min, max] with a fixed step.
type FloatField struct {
	label    string
	value    float32
	min, max float32
	step     float32
	onChange func(float32)
}

func (f *Folder) AddFloat(label string, value, min, max float32) *FloatField {
	field := &FloatField{label: label, min: min, max: max, step: (max - min) / 100}
	field.value = field.constrain(value)
	f.add(field)
	return field
}

// Step fixes the slider increment; values snap to min + k·step.
func (f *FloatField) Step(step float32) *FloatField {
	if step > 0 {
		f.step = step
		f.value = f.constrain(f.value)
	}
	return f
}

func (f *FloatField) OnChange(fn func(float32)) *FloatField {
	f.onChange = fn
	return f
}

func (f *FloatField) Label() string   { return f.label }
func (f *FloatField) Kind() FieldKind { return FieldFloat }
func (f *FloatField) Get() float32    { return f.value }
func (f *FloatField) Min() float32    { return f.min }
func (f *FloatField) Max() float32    { return f.max }
func (f *FloatField) Value() any      { return f.value }

func (f *FloatField) Display() string {
	return strconv.FormatFloat(float64(f.value), 'f', decimals(f.step), 32)
}

func (f *FloatField) constrain(v float32) float32 {
	if math32.IsNaN(v) {
		v = f.min
	}
	if f.step > 0 {
		v = f.min + math32.Round((v-f.min)/f.step)*f.step
	}
	if v < f.min {
		v = f.min
	}
	if v > f.max {
		v = f.max
	}
	return v
}

// Set clamps and snaps v, stores it and fires the change callback.
func (f *FloatField) Set(v float32) {
	f.value = f.constrain(v)
	if f.onChange != nil {
		f.onChange(f.value)
	}
}

func (f *FloatField) Nudge(steps int) {
	f.Set(f.value + float32(steps)*f.step)
}

func (f *FloatField) SetValue(v any) bool {
	n, ok := toFloat(v)
	if !ok {
		return false
	}
	f.Set(n)
	return true
}

// BoolField is a checkbox.
type BoolField struct {
	label    string
	value    bool
	onChange func(bool)
}

func (f *Folder) AddBool(label string, value bool) *BoolField {
	field := &BoolField{label: label, value: value}
	f.add(field)
	return field
}

func (f *BoolField) OnChange(fn func(bool)) *BoolField {
	f.onChange = fn
	return f
}

func (f *BoolField) Label() string   { return f.label }
func (f *BoolField) Kind() FieldKind { return FieldBool }
func (f *BoolField) Get() bool       { return f.value }
func (f *BoolField) Value() any      { return f.value }

func (f *BoolField) Display() string {
	if f.value {
		return "[x]"
	}
	return "[ ]"
}

func (f *BoolField) Set(v bool) {
	f.value = v
	if f.onChange != nil {
		f.onChange(v)
	}
}

func (f *BoolField) Nudge(steps int) {
	if steps%2 != 0 {
		f.Set(!f.value)
	}
}

func (f *BoolField) SetValue(v any) bool {
	b, ok := v.(bool)
	if !ok {
		return false
	}
	f.Set(b)
	return true
}

// ColorField holds a 0xRRGGBB color. Nudging rotates the hue.
type ColorField struct {
	label    string
	value    uint32
	onChange func(uint32)
}

const colorNudgeDegrees = 10

func (f *Folder) AddColor(label string, hex uint32) *ColorField {
	field := &ColorField{label: label, value: hex & 0xffffff}
	f.add(field)
	return field
}

func (f *ColorField) OnChange(fn func(uint32)) *ColorField {
	f.onChange = fn
	return f
}

func (f *ColorField) Label() string   { return f.label }
func (f *ColorField) Kind() FieldKind { return FieldColor }
func (f *ColorField) Get() uint32     { return f.value }
func (f *ColorField) Display() string { return fmt.Sprintf("#%06x", f.value) }
func (f *ColorField) Value() any      { return f.Display() }

func (f *ColorField) Set(hex uint32) {
	f.value = hex & 0xffffff
	if f.onChange != nil {
		f.onChange(f.value)
	}
}

func (f *ColorField) Nudge(steps int) {
	h, s, v := hexToColorful(f.value).Hsv()
	h += float64(steps * colorNudgeDegrees)
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	f.Set(colorfulToHex(colorful.Hsv(h, s, v)))
}

// SetValue accepts "#rrggbb" strings or numbers.
func (f *ColorField) SetValue(v any) bool {
	if s, ok := v.(string); ok {
		hex, err := ParseHexColor(s)
		if err != nil {
			return false
		}
		f.Set(hex)
		return true
	}
	n, ok := toFloat(v)
	if !ok || n < 0 {
		return false
	}
	f.Set(uint32(n))
	return true
}

// ChoiceField is an enum over a fixed option list.
type ChoiceField[T comparable] struct {
	label    string
	value    T
	options  []T
	onChange func(T)
}

// AddChoice declares an enum field. The initial value must be one of options,
// otherwise the first option is used.
func AddChoice[T comparable](f *Folder, label string, value T, options []T) *ChoiceField[T] {
	field := &ChoiceField[T]{label: label, options: append([]T(nil), options...)}
	if field.index(value) >= 0 || len(options) == 0 {
		field.value = value
	} else {
		field.value = options[0]
	}
	f.add(field)
	return field
}

func (f *ChoiceField[T]) OnChange(fn func(T)) *ChoiceField[T] {
	f.onChange = fn
	return f
}

func (f *ChoiceField[T]) Label() string   { return f.label }
func (f *ChoiceField[T]) Kind() FieldKind { return FieldChoice }
func (f *ChoiceField[T]) Get() T          { return f.value }
func (f *ChoiceField[T]) Options() []T    { return f.options }
func (f *ChoiceField[T]) Value() any      { return f.value }
func (f *ChoiceField[T]) Display() string { return "< " + fmt.Sprint(f.value) + " >" }

func (f *ChoiceField[T]) index(v T) int {
	for i, o := range f.options {
		if o == v {
			return i
		}
	}
	return -1
}

// Set selects v. Values outside the option list are rejected.
func (f *ChoiceField[T]) Set(v T) bool {
	if f.index(v) < 0 {
		return false
	}
	f.value = v
	if f.onChange != nil {
		f.onChange(v)
	}
	return true
}

func (f *ChoiceField[T]) Nudge(steps int) {
	n := len(f.options)
	if n == 0 {
		return
	}
	i := f.index(f.value)
	if i < 0 {
		i = 0
	}
	i = ((i+steps)%n + n) % n
	f.Set(f.options[i])
}

func (f *ChoiceField[T]) SetValue(v any) bool {
	if typed, ok := v.(T); ok {
		return f.Set(typed)
	}
	converted, ok := convertNumeric[T](v)
	if !ok {
		return false
	}
	return f.Set(converted)
}

// convertNumeric converts between numeric kinds only (JSON numbers decode as float64).
func convertNumeric[T any](v any) (T, bool) {
	var zero T
	target := reflect.TypeOf(zero)
	src := reflect.ValueOf(v)
	if target == nil || !src.IsValid() || !isNumericKind(src.Kind()) || !isNumericKind(target.Kind()) {
		return zero, false
	}
	out := src.Convert(target)
	// Reject lossy float→int conversions such as 1.5 → 1.
	if out.Convert(src.Type()).Interface() != src.Interface() {
		return zero, false
	}
	return out.Interface().(T), true
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint32:
		return float32(n), true
	}
	return 0, false
}

// decimals is the number of fraction digits needed to show multiples of step.
func decimals(step float32) int {
	d := 0
	for step > 0 && d < 4 {
		frac := step - math32.Floor(step)
		if frac < 1e-4 || frac > 1-1e-4 {
			break
		}
		step *= 10
		d++
	}
	return d
}

// ParseHexColor accepts "#rrggbb", "rrggbb" and "0xrrggbb".
func ParseHexColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", s)
	}
	return uint32(n), nil
}

func hexToColorful(hex uint32) colorful.Color {
	return colorful.Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

func colorfulToHex(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// HexToLinear converts an sRGB hex color to linear RGB for shading.
func HexToLinear(hex uint32) mgl32.Vec3 {
	r, g, b := hexToColorful(hex).LinearRgb()
	return mgl32.Vec3{float32(r), float32(g), float32(b)}
}

// LinearToHex is the inverse of HexToLinear, rounded to 8 bits per channel.
func LinearToHex(c mgl32.Vec3) uint32 {
	return colorfulToHex(colorful.LinearRgb(float64(c.X()), float64(c.Y()), float64(c.Z())))
}
