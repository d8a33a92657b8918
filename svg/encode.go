package svg

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	svgo "github.com/ajstarks/svgo"

	"github.com/phanxgames/canopy"
)

// Encode writes the document as SVG markup. Hidden and fully transparent
// elements are omitted; empty groups are kept so ids stay stable.
func (d *Document) Encode(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svgo.New(ew)
	canvas.Start(int(math.Ceil(d.width)), int(math.Ceil(d.height)))
	if d.background != nil {
		canvas.Rect(0, 0, int(math.Ceil(d.width)), int(math.Ceil(d.height)), paint("fill", *d.background))
	}
	for _, c := range d.root.children {
		encode(canvas, c)
	}
	canvas.End()
	return ew.err
}

// String returns the encoded document.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Encode(&b)
	return b.String()
}

func encode(canvas *svgo.SVG, e *Element) {
	if e.Hidden || e.Alpha <= 0 {
		return
	}
	if e.Group {
		attrs := []string{`id="` + html.EscapeString(e.Name) + `"`}
		if t := transform(e); t != "" {
			attrs = append(attrs, `transform="`+t+`"`)
		}
		if e.Alpha < 1 {
			attrs = append(attrs, `opacity="`+num(e.Alpha)+`"`)
		}
		canvas.Group(attrs...)
		for _, c := range e.children {
			encode(canvas, c)
		}
		canvas.Gend()
		return
	}

	attrs := []string{`data-index="` + strconv.Itoa(e.Index) + `"`}
	if t := transform(e); t != "" {
		attrs = append(attrs, `transform="`+t+`"`)
	}
	attrs = append(attrs, fillStyle(e))
	switch e.Shape {
	case canopy.ShapeRect:
		canvas.Path(rectPath(e.Width, e.Height), attrs...)
	case canopy.ShapeArc:
		if p := sectorPath(e.InnerRadius, e.OuterRadius, e.StartAngle, e.EndAngle); p != "" {
			canvas.Path(p, attrs...)
		}
	case canopy.ShapeCircle:
		if p := sectorPath(0, e.OuterRadius, 0, 2*math.Pi); p != "" {
			canvas.Path(p, attrs...)
		}
	case canopy.ShapeLine:
		if len(e.Points) > 1 {
			canvas.Path(linePath(e.Points), attrs...)
		}
	case canopy.ShapeText:
		canvas.Text(0, 0, e.Text, attrs...)
	}
}

// transform places an element: translate, rotate (degrees), then scale.
func transform(e *Element) string {
	var parts []string
	if e.X != 0 || e.Y != 0 {
		parts = append(parts, "translate("+num(e.X)+" "+num(e.Y)+")")
	}
	if e.Rotation != 0 {
		parts = append(parts, "rotate("+num(e.Rotation*180/math.Pi)+")")
	}
	if e.ScaleX != 1 || e.ScaleY != 1 {
		parts = append(parts, "scale("+num(e.ScaleX)+" "+num(e.ScaleY)+")")
	}
	return strings.Join(parts, " ")
}

func fillStyle(e *Element) string {
	var parts []string
	fill := e.Fill
	if e.Shape == canopy.ShapeLine {
		parts = append(parts, "fill:none")
		stroke := e.Stroke
		if stroke.A == 0 {
			stroke = fill
		}
		parts = append(parts, paint("stroke", stroke), "stroke-width:"+num(math.Max(e.StrokeWidth, 1)))
	} else {
		parts = append(parts, paint("fill", fill))
		if e.Stroke.A > 0 && e.StrokeWidth > 0 {
			parts = append(parts, paint("stroke", e.Stroke), "stroke-width:"+num(e.StrokeWidth))
		}
	}
	if e.Shape == canopy.ShapeText {
		parts = append(parts, "font-size:"+num(e.FontSize)+"px", "text-anchor:middle", "dominant-baseline:middle")
	}
	if e.Alpha < 1 {
		parts = append(parts, "opacity:"+num(e.Alpha))
	}
	return strings.Join(parts, ";")
}

// paint formats a colour property with its opacity.
func paint(prop string, c canopy.Color) string {
	s := prop + ":" + c.Hex()
	if c.A < 1 {
		s += ";" + prop + "-opacity:" + num(c.A)
	}
	return s
}

func rectPath(w, h float64) string {
	return fmt.Sprintf("M%s %sh%sv%sh%sz", num(-w/2), num(-h/2), num(w), num(h), num(-w))
}

// sectorPath draws an annular sector clockwise from twelve o'clock. A full
// turn is split in two arcs since a single SVG arc cannot close on itself.
func sectorPath(inner, outer, start, end float64) string {
	sweep := end - start
	if sweep <= 0 || outer <= 0 {
		return ""
	}
	if sweep >= 2*math.Pi {
		mid := start + math.Pi
		return sectorPath(inner, outer, start, mid) + sectorPath(inner, outer, mid, start+2*math.Pi)
	}
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	pt := func(r, a float64) string {
		sin, cos := math.Sincos(a)
		return num(r*sin) + " " + num(-r*cos)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%sA%s %s 0 %d 1 %s", pt(outer, start), num(outer), num(outer), large, pt(outer, end))
	if inner > 0 {
		fmt.Fprintf(&b, "L%sA%s %s 0 %d 0 %s", pt(inner, end), num(inner), num(inner), large, pt(inner, start))
	} else {
		b.WriteString("L0 0")
	}
	b.WriteString("Z")
	return b.String()
}

func linePath(points []canopy.Vec2) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		b.WriteString(num(p.X) + " " + num(p.Y))
	}
	return b.String()
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// errWriter remembers the first write error; svgo does not return errors.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
