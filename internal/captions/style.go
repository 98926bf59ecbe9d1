package captions

// StylePatch is a partial style update. Nil fields keep the previous value.
type StylePatch struct {
	FontFamily        *string   `json:"fontFamily,omitempty"`
	FontSize          *int      `json:"fontSize,omitempty"`
	TextColor         *string   `json:"textColor,omitempty"`
	BackgroundColor   *string   `json:"backgroundColor,omitempty"`
	HighlightColor    *string   `json:"highlightColor,omitempty"`
	OutlineColor      *string   `json:"outlineColor,omitempty"`
	BackgroundOpacity *float64  `json:"backgroundOpacity,omitempty"`
	Position          *Position `json:"position,omitempty"`
	Alignment         *string   `json:"alignment,omitempty"`
	Shadow            *bool     `json:"shadow,omitempty"`
	Outline           *bool     `json:"outline,omitempty"`
	HighlightEnabled  *bool     `json:"highlightEnabled,omitempty"`
	Animation         *string   `json:"animation,omitempty"`
}

// DefaultStyle is the base style used when no style exists yet.
func DefaultStyle() Style {
	return Style{
		FontFamily:        "Inter",
		FontSize:          48,
		TextColor:         "#FFFFFF",
		BackgroundColor:   "#000000",
		HighlightColor:    "#FFD600",
		OutlineColor:      "#000000",
		BackgroundOpacity: 0.6,
		Position:          PositionBottom,
		Alignment:         "center",
		HighlightEnabled:  true,
		Animation:         "none",
	}
}

// MergeStyle produces a new style by applying the patch onto prev. When prev
// is nil the patch is applied onto DefaultStyle, so a partial patch never
// lands on undefined fields. The result is a fresh value; prev is never
// mutated.
func MergeStyle(prev *Style, patch StylePatch) Style {
	base := DefaultStyle()
	if prev != nil {
		base = *prev
	}

	if patch.FontFamily != nil {
		base.FontFamily = *patch.FontFamily
	}
	if patch.FontSize != nil {
		base.FontSize = *patch.FontSize
	}
	if patch.TextColor != nil {
		base.TextColor = *patch.TextColor
	}
	if patch.BackgroundColor != nil {
		base.BackgroundColor = *patch.BackgroundColor
	}
	if patch.HighlightColor != nil {
		base.HighlightColor = *patch.HighlightColor
	}
	if patch.OutlineColor != nil {
		base.OutlineColor = *patch.OutlineColor
	}
	if patch.BackgroundOpacity != nil {
		base.BackgroundOpacity = *patch.BackgroundOpacity
	}
	if patch.Position != nil {
		base.Position = *patch.Position
	}
	if patch.Alignment != nil {
		base.Alignment = *patch.Alignment
	}
	if patch.Shadow != nil {
		base.Shadow = *patch.Shadow
	}
	if patch.Outline != nil {
		base.Outline = *patch.Outline
	}
	if patch.HighlightEnabled != nil {
		base.HighlightEnabled = *patch.HighlightEnabled
	}
	if patch.Animation != nil {
		base.Animation = *patch.Animation
	}

	return base
}
