package logging

import (
	"fmt"
	"math"
	"sort"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

// ProfileTip is one piece of actionable advice about a noise profile
type ProfileTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "profile_too_short")
}

// MaxProfileTips is the maximum number of tips to return
const MaxProfileTips = 5

// Thresholds for the tip rules
const (
	minProfileSeconds  = 1.0   // Shorter profiles give noise reducers little to learn from
	humAudibleDB       = 10.0  // Hum this far above the local noise is worth fixing
	highNoiseFloorDBFS = -50.0 // RMS above this is an audibly noisy room
	fewFramesPercent   = 10.0  // Selection below this share of frames is sparse
)

type tipRule func(r *processor.Result, mainsHz int) *ProfileTip

// GenerateProfileTips inspects an extraction result and returns prioritised
// suggestions for getting a better noise profile
func GenerateProfileTips(result *processor.Result, mainsHz int) []ProfileTip {
	if result == nil || result.Analysis == nil {
		return nil
	}
	if len(result.Analysis.Selection) == 0 {
		return []ProfileTip{tipNoSilentFrames(result)}
	}
	if result.Measurements == nil {
		return nil
	}

	rules := []tipRule{
		tipProfileTooShort,
		tipDigitalSilence,
		tipMainsHum,
		tipNoiseFloorHigh,
		tipFewFrames,
		tipGatingThreshold,
	}

	var tips []ProfileTip
	fired := make(map[string]bool)
	for _, rule := range rules {
		if tip := rule(result, mainsHz); tip != nil {
			tips = append(tips, *tip)
			fired[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, fired)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxProfileTips {
		tips = tips[:MaxProfileTips]
	}
	return tips
}

// applyExclusions drops tips made redundant by a more specific one
func applyExclusions(tips []ProfileTip, fired map[string]bool) []ProfileTip {
	var result []ProfileTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "few_frames":
			if fired["profile_too_short"] {
				continue
			}
		case "mains_hum", "noise_floor_high":
			if fired["digital_silence"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// tipNoSilentFrames explains an extraction that found nothing to assemble
func tipNoSilentFrames(r *processor.Result) ProfileTip {
	return ProfileTip{
		Priority: 10,
		RuleID:   "no_silent_frames",
		Message: fmt.Sprintf("No frame was at or below %.0f dB(A); the quietest measured %.1f dB(A). Record a few seconds of room tone with nobody speaking.",
			processor.SilenceCutoffDB, r.Analysis.QuietestDB()),
	}
}

// tipProfileTooShort fires when less than a second of noise was collected
func tipProfileTooShort(r *processor.Result, _ int) *ProfileTip {
	seconds := r.OutputSeconds()
	if seconds >= minProfileSeconds {
		return nil
	}
	return &ProfileTip{
		Priority: 9,
		RuleID:   "profile_too_short",
		Message: fmt.Sprintf("Only %.1fs of background noise was found. Record a few seconds of room tone before anyone speaks.",
			seconds),
	}
}

// tipDigitalSilence fires when the quietest frames contain no signal at all,
// typically because the recording was gated or edited
func tipDigitalSilence(r *processor.Result, _ int) *ProfileTip {
	if !isDigitalSilence(r.Measurements.RMSLevel) {
		return nil
	}
	return &ProfileTip{
		Priority: 8,
		RuleID:   "digital_silence",
		Message:  "The quietest frames are digital silence, so this profile holds no room noise. Use a recording made before any gating or editing.",
	}
}

// tipMainsHum fires when a mains harmonic stands well above the local noise
func tipMainsHum(r *processor.Result, mainsHz int) *ProfileTip {
	hum := humLevel(r, mainsHz)
	if math.IsNaN(hum) || hum < humAudibleDB {
		return nil
	}
	return &ProfileTip{
		Priority: 7,
		RuleID:   "mains_hum",
		Message: fmt.Sprintf("%d Hz mains hum stands %.0f dB above the background noise. Check for ground loops and keep audio cables away from power leads.",
			mainsHz, hum),
	}
}

// tipNoiseFloorHigh fires when the profile itself is loud
func tipNoiseFloorHigh(r *processor.Result, _ int) *ProfileTip {
	level := r.Measurements.RMSLevel
	if level <= highNoiseFloorDBFS {
		return nil
	}
	return &ProfileTip{
		Priority: 6,
		RuleID:   "noise_floor_high",
		Message: fmt.Sprintf("The background noise sits at %.0f dBFS. Turn off fans and air conditioning or move to a quieter room.",
			level),
	}
}

// tipFewFrames fires when only a small share of the recording was quiet
func tipFewFrames(r *processor.Result, _ int) *ProfileTip {
	pct := selectedPercent(r)
	if pct >= fewFramesPercent {
		return nil
	}
	return &ProfileTip{
		Priority: 4,
		RuleID:   "few_frames",
		Message: fmt.Sprintf("Only %d of %d frames (%.0f%%) were quiet enough to use. Pauses between speakers make better noise profiles.",
			r.SegmentCount(), r.Analysis.Geometry.FrameCount, pct),
	}
}

// tipGatingThreshold fires when a non-default gating threshold was configured
func tipGatingThreshold(r *processor.Result, _ int) *ProfileTip {
	if !r.Config.GatingThresholdIgnored() {
		return nil
	}
	return &ProfileTip{
		Priority: 2,
		RuleID:   "gating_threshold_ignored",
		Message: fmt.Sprintf("The gating threshold of %.0f dB has no effect; frames at or below %.0f dB(A) are always used.",
			r.Config.GatingThresholdDB, processor.SilenceCutoffDB),
	}
}
