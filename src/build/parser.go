package build

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LayerEvent is one build instruction parsed from docker build output.
type LayerEvent struct {
	Step        int           // 1-based step number
	Instruction string        // "FROM", "COPY", "RUN", ...
	Detail      string        // instruction arguments (truncated)
	Cached      bool          // served from the layer cache
	Duration    time.Duration // BuildKit only; 0 when unknown or cached
}

// Classic builder output:
//
//	Step 2/5 : RUN apk add --no-cache git
//	 ---> Using cache
//	 ---> 3f1c2b9e8a77
var (
	classicStepRe  = regexp.MustCompile(`^Step (\d+)/\d+ : (\w+)\s*(.*)$`)
	classicCacheRe = regexp.MustCompile(`^---> Using cache$`)
)

// BuildKit plain progress output:
//
//	#5 [2/3] RUN apk add --no-cache git
//	#5 CACHED
//	#6 DONE 4.2s
var (
	bkStepRe     = regexp.MustCompile(`^#(\d+) \[(?:[^\]]*? )?(\d+)/\d+\] (\w+)\s*(.*)$`)
	bkInternalRe = regexp.MustCompile(`^#\d+ \[internal\]`)
	bkCachedRe   = regexp.MustCompile(`^#(\d+) CACHED$`)
	bkDoneRe     = regexp.MustCompile(`^#(\d+) DONE (\d+\.?\d*)s$`)
)

const maxDetail = 60

// ParseBuildOutput extracts layer events from classic or BuildKit plain
// output. Internal BuildKit steps are dropped.
func ParseBuildOutput(output string) []LayerEvent {
	var events []LayerEvent
	bkIndex := make(map[int]int) // BuildKit vertex number -> index in events

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || bkInternalRe.MatchString(line) {
			continue
		}

		if m := classicStepRe.FindStringSubmatch(line); m != nil {
			step, _ := strconv.Atoi(m[1])
			events = append(events, LayerEvent{Step: step, Instruction: strings.ToUpper(m[2]), Detail: truncate(m[3])})
			continue
		}
		if classicCacheRe.MatchString(line) {
			if n := len(events); n > 0 {
				events[n-1].Cached = true
			}
			continue
		}

		if m := bkStepRe.FindStringSubmatch(line); m != nil {
			vertex, _ := strconv.Atoi(m[1])
			if _, ok := bkIndex[vertex]; ok {
				continue
			}
			step, _ := strconv.Atoi(m[2])
			bkIndex[vertex] = len(events)
			events = append(events, LayerEvent{Step: step, Instruction: strings.ToUpper(m[3]), Detail: truncate(m[4])})
			continue
		}
		if m := bkCachedRe.FindStringSubmatch(line); m != nil {
			vertex, _ := strconv.Atoi(m[1])
			if i, ok := bkIndex[vertex]; ok {
				events[i].Cached = true
			}
			continue
		}
		if m := bkDoneRe.FindStringSubmatch(line); m != nil {
			vertex, _ := strconv.Atoi(m[1])
			if i, ok := bkIndex[vertex]; ok {
				seconds, _ := strconv.ParseFloat(m[2], 64)
				events[i].Duration = time.Duration(seconds * float64(time.Second))
			}
		}
	}
	return events
}

// CountCached returns how many events were cache hits.
func CountCached(events []LayerEvent) int {
	n := 0
	for _, e := range events {
		if e.Cached {
			n++
		}
	}
	return n
}

// FormatLayerTiming formats a layer's timing for display.
func FormatLayerTiming(e LayerEvent) string {
	if e.Cached {
		return "cached"
	}
	if e.Duration > 0 {
		return formatBuildDuration(e.Duration)
	}
	return ""
}

func formatBuildDuration(d time.Duration) string {
	if d >= time.Minute {
		return strconv.FormatFloat(d.Minutes(), 'f', 1, 64) + "m"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}

// FormatLayerInstruction formats a layer event into a display string.
func FormatLayerInstruction(e LayerEvent) string {
	if e.Detail != "" {
		return e.Instruction + " " + e.Detail
	}
	return e.Instruction
}

func truncate(s string) string {
	if len(s) > maxDetail {
		return s[:maxDetail-3] + "..."
	}
	return s
}
