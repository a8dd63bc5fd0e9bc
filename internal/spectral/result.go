package spectral

// Result is the tagged union of the two result shapes. Exactly one branch is
// populated depending on Mode; consumers switch on Mode at the single point
// where results leave this package rather than re-checking a flag per
// component.
type Result struct {
	Mode RenderMode `json:"render_mode"`

	// Shared axes and raw power, present in both modes.
	TimesMs        []float64     `json:"times"`
	Freqs          []float64     `json:"freqs"`
	Power          [][]float64   `json:"power"` // [freq][time], channel-averaged
	ChannelNames   []string      `json:"channel_names"`
	PowerByChannel [][][]float64 `json:"power_by_channel,omitempty"`

	// Image-mode payload: PNG bytes for the aggregate view and per channel.
	ImagePNG        []byte            `json:"image_png,omitempty"`
	ImagesByChannel map[string][]byte `json:"images_by_channel,omitempty"`
	VMin            float64           `json:"vmin,omitempty"`
	VMax            float64           `json:"vmax,omitempty"`
}
