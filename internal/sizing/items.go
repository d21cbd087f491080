package sizing

import "encoding/json"

type Button struct {
	Title string `json:"title"`
}

type ListItem struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// ItemListPayload is the payload of item-list events.
type ItemListPayload struct {
	Title   string     `json:"title"`
	Items   []ListItem `json:"items"`
	Buttons []Button   `json:"buttons,omitempty"`
}

type ItemListMeasurer struct {
	Metrics Metrics
}

func (m *ItemListMeasurer) Measure(payload json.RawMessage, width float64) float64 {
	var list ItemListPayload
	if err := json.Unmarshal(payload, &list); err != nil {
		return 0
	}
	bubble := width * m.Metrics.BubbleFraction
	h := m.Metrics.BubblePaddingY
	if list.Title != "" {
		h += float64(wrappedLines(list.Title, m.Metrics.columns(bubble))) * m.Metrics.LineHeight
	}
	h += float64(len(list.Items)) * m.Metrics.ItemRowHeight
	h += float64(len(list.Buttons)) * m.Metrics.ButtonHeight
	return h
}

type CarouselPage struct {
	Title   string   `json:"title"`
	Detail  string   `json:"detail,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

// CarouselPayload is the payload of item-carousel events.
type CarouselPayload struct {
	Items []CarouselPage `json:"items"`
}

// CarouselMeasurer sizes a horizontally paged carousel. Every page shares
// one height, that of the tallest page.
type CarouselMeasurer struct {
	Metrics Metrics
}

func (m *CarouselMeasurer) Measure(payload json.RawMessage, width float64) float64 {
	var carousel CarouselPayload
	if err := json.Unmarshal(payload, &carousel); err != nil || len(carousel.Items) == 0 {
		return 0
	}
	cols := m.Metrics.columns(width * m.Metrics.CarouselFraction)

	var tallest float64
	for _, page := range carousel.Items {
		h := float64(wrappedLines(page.Title, cols)) * m.Metrics.LineHeight
		if page.Detail != "" {
			h += float64(wrappedLines(page.Detail, cols)) * m.Metrics.LineHeight
		}
		h += float64(len(page.Buttons)) * m.Metrics.ButtonHeight
		if h > tallest {
			tallest = h
		}
	}
	h := tallest + m.Metrics.BubblePaddingY
	if len(carousel.Items) > 1 {
		h += m.Metrics.PageIndicator
	}
	return h
}
