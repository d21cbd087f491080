package sizing

import (
	"encoding/json"
	"math"
)

// PicturePayload is the payload of picture events.
type PicturePayload struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PictureMeasurer scales the image to the bubble width, keeping its aspect
// ratio. Images never upscale past their natural width.
type PictureMeasurer struct {
	Metrics Metrics
}

func (p *PictureMeasurer) Measure(payload json.RawMessage, width float64) float64 {
	var pic PicturePayload
	if err := json.Unmarshal(payload, &pic); err != nil || pic.Width <= 0 || pic.Height <= 0 {
		return p.Metrics.PicturePlaceholder
	}
	displayWidth := math.Min(width*p.Metrics.BubbleFraction, pic.Width)
	return displayWidth * pic.Height / pic.Width
}
