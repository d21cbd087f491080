package sizing

// Metrics are the layout constants the built-in measurers work from. Widths
// and heights share one abstract unit (points on mobile, cells in a
// terminal).
type Metrics struct {
	CharWidth          float64 `json:"char_width"`
	LineHeight         float64 `json:"line_height"`
	BubbleFraction     float64 `json:"bubble_fraction"`
	BubblePaddingX     float64 `json:"bubble_padding_x"`
	BubblePaddingY     float64 `json:"bubble_padding_y"`
	RunSpacing         float64 `json:"run_spacing"`
	GroupSpacing       float64 `json:"group_spacing"`
	DetailLabelHeight  float64 `json:"detail_label_height"`
	PicturePlaceholder float64 `json:"picture_placeholder"`
	ItemRowHeight      float64 `json:"item_row_height"`
	ButtonHeight       float64 `json:"button_height"`
	CarouselFraction   float64 `json:"carousel_fraction"`
	PageIndicator      float64 `json:"page_indicator"`
	HeaderPaddingY     float64 `json:"header_padding_y"`
	TypingHeight       float64 `json:"typing_height"`
}

func DefaultMetrics() Metrics {
	return Metrics{
		CharWidth:          8,
		LineHeight:         20,
		BubbleFraction:     0.8,
		BubblePaddingX:     24,
		BubblePaddingY:     16,
		RunSpacing:         2,
		GroupSpacing:       12,
		DetailLabelHeight:  18,
		PicturePlaceholder: 160,
		ItemRowHeight:      36,
		ButtonHeight:       44,
		CarouselFraction:   0.85,
		PageIndicator:      24,
		HeaderPaddingY:     24,
		TypingHeight:       44,
	}
}

// columns is how many character cells fit in width once padding is removed.
func (m Metrics) columns(width float64) int {
	avail := width - m.BubblePaddingX
	if m.CharWidth <= 0 || avail < m.CharWidth {
		return 1
	}
	return int(avail / m.CharWidth)
}
