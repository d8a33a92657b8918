package canopy

// contribution is one layer's proposal for one slot of the axis scale set.
type contribution struct {
	layer *Layer
	slot  Slot
	scale Scale
}

// BindCoordinate gathers scale proposals from the data layers into the axis
// layer and scatters the merged set back. With redraw set, every affected
// layer except trigger is drawn afterwards. Without an axis layer it does
// nothing.
//
// The merged set is a new value built from the contributions; no layer's
// scale is modified in place. A conflicting merge keeps the earlier domain
// and is reported as a configuration error.
func (c *Chart) BindCoordinate(redraw bool, trigger *Layer) {
	axis := c.AxisLayer()
	if axis == nil {
		return
	}
	c.needBind = false
	cs := axis.impl.(CoordinateOwner).Coordinate()

	var (
		contribs  []contribution
		receivers []*Layer
	)
	for _, l := range c.layers {
		if l == axis || l.destroyed {
			continue
		}
		_, isMap := l.impl.(Projector)
		if cs == Geographic {
			// Every layer renders against the base map's projection.
			receivers = append(receivers, l)
		}
		if isMap != (cs == Geographic) {
			continue
		}
		scales, ok := l.Scales()
		if !ok {
			continue
		}
		if cs != Geographic {
			receivers = append(receivers, l)
		}
		for _, slot := range gatherSlots(cs, l.opts.Axis) {
			src := slot
			if slot == SlotYR {
				src = SlotY
			}
			if sc := scales.Get(src); sc != nil {
				contribs = append(contribs, contribution{layer: l, slot: slot, scale: sc})
			}
		}
	}

	merged := ScaleSet{}
	if own, ok := axis.Scales(); ok {
		merged.Nice = own.Nice
	}
	for _, ct := range contribs {
		next, err := MergeScale(merged.Get(ct.slot), ct.scale)
		if err != nil {
			c.log.Warn("scale merge rejected, keeping existing domain",
				"slot", ct.slot, "layer", ct.layer.id, "err", err)
			c.report(err)
		}
		merged = merged.With(ct.slot, next)
	}
	if !merged.Empty() {
		axis.SetScale(merged)
	}

	// The axis layer may have adjusted the merged set (nice, range).
	final, ok := axis.Scales()
	if !ok {
		final = merged
	}
	for _, l := range receivers {
		local, _ := l.Scales()
		l.SetScale(scatter(cs, local, final, l.opts))
	}

	if !redraw {
		return
	}
	if axis != trigger {
		axis.Draw()
	}
	for _, l := range receivers {
		if l != trigger {
			l.Draw()
		}
	}
}

// gatherSlots lists the axis slots a layer contributes to.
func gatherSlots(cs CoordinateSystem, axis string) []Slot {
	switch cs {
	case Polar:
		return []Slot{SlotAngle, SlotRadius}
	case Geographic:
		return []Slot{SlotX, SlotY}
	}
	if axis == AxisMinor {
		return []Slot{SlotX, SlotYR}
	}
	return []Slot{SlotX, SlotY}
}

// scatter overlays the axis slots a layer renders against onto its local
// set. Geographic scales are shifted into the layer's layout space.
func scatter(cs CoordinateSystem, local, axis ScaleSet, opts LayerOptions) ScaleSet {
	out := local
	set := func(dst Slot, sc Scale) {
		if sc != nil {
			out = out.With(dst, sc)
		}
	}
	switch cs {
	case Polar:
		set(SlotAngle, axis.Angle)
		set(SlotRadius, axis.Radius)
	case Geographic:
		if axis.X != nil {
			set(SlotX, axis.X.Shift(-opts.Layout.X))
		}
		if axis.Y != nil {
			set(SlotY, axis.Y.Shift(-opts.Layout.Y))
		}
	default:
		set(SlotX, axis.X)
		if opts.Axis == AxisMinor {
			set(SlotY, axis.YR)
		} else {
			set(SlotY, axis.Y)
		}
	}
	return out
}
