package encoding

import "strconv"

// Profile is a fixed encoder parameter bundle. The quality value is inserted
// after Leading under QualityFlag.
type Profile struct {
	Name        string
	Encoder     string
	Leading     []string
	QualityFlag string
	Trailing    []string
}

type profileKey struct {
	codec  VideoCodec
	vendor HardwareVendor
}

var profiles = map[profileKey]Profile{
	{VideoH264, VendorNVIDIA}: {
		Name:        "h264-nvenc",
		Encoder:     "h264_nvenc",
		Leading:     []string{"-preset", "slow", "-rc", "vbr"},
		QualityFlag: "-cq",
		Trailing:    []string{"-b:v", "2M", "-maxrate", "5M", "-tune", "animation"},
	},
	{VideoH264, VendorAMD}: {
		Name:        "h264-amf",
		Encoder:     "h264_amf",
		Leading:     []string{"-quality", "slow"},
		QualityFlag: "-cq",
		Trailing:    []string{"-tune", "animation"},
	},
	{VideoH264, VendorNone}: {
		Name:        "h264-x264",
		Encoder:     "libx264",
		Leading:     []string{"-preset", "slow"},
		QualityFlag: "-crf",
		Trailing:    []string{"-tune", "animation", "-x264-params", "aq-mode=3:aq-strength=0.8"},
	},
	{VideoH265, VendorNVIDIA}: {
		Name:        "hevc-nvenc",
		Encoder:     "hevc_nvenc",
		Leading:     []string{"-preset", "slow", "-rc", "vbr"},
		QualityFlag: "-cq",
		Trailing:    []string{"-b:v", "2M", "-maxrate", "5M"},
	},
	{VideoH265, VendorAMD}: {
		Name:        "hevc-amf",
		Encoder:     "hevc_amf",
		Leading:     []string{"-quality", "slow"},
		QualityFlag: "-cq",
	},
	{VideoH265, VendorNone}: {
		Name:        "hevc-x265",
		Encoder:     "libx265",
		Leading:     []string{"-preset", "slow"},
		QualityFlag: "-crf",
		Trailing:    []string{"-x265-params", "limit-sao:bframes=8:psy-rd=1.5:psy-rdoq=2:aq-mode=3"},
	},
}

// ProfileFor returns the parameter bundle for codec and vendor. Vendors
// without an entry use the software profile of the codec.
func ProfileFor(codec VideoCodec, vendor HardwareVendor) (Profile, bool) {
	if p, ok := profiles[profileKey{codec, vendor}]; ok {
		return p, true
	}
	p, ok := profiles[profileKey{codec, VendorNone}]
	return p, ok
}

// Args renders the video codec directives with quality substituted.
func (p Profile) Args(quality int) []string {
	args := make([]string, 0, 4+len(p.Leading)+len(p.Trailing))
	args = append(args, "-c:v", p.Encoder)
	args = append(args, p.Leading...)
	if p.QualityFlag != "" {
		args = append(args, p.QualityFlag, strconv.Itoa(quality))
	}
	args = append(args, p.Trailing...)
	return args
}
