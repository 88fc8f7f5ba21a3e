// Package render reconciles the camera list against the four preview slots
// and runs one player per mounted slot.
package render

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// SlotCount is the number of preview slots in the grid.
const SlotCount = 4

// Strategy is the playback strategy chosen for a stream URL.
type Strategy string

// Playback strategies.
const (
	StrategyOffline   Strategy = "offline"
	StrategySnapshot  Strategy = "snapshot"
	StrategySegmented Strategy = "segmented"
)

// Classify picks the playback strategy for a stream URL. Any non-empty URL
// that is not an MJPEG endpoint goes to the segmented player, which reports a
// fatal overlay if the URL turns out not to be a playlist.
func Classify(streamURL string) Strategy {
	switch {
	case strings.TrimSpace(streamURL) == "":
		return StrategyOffline
	case strings.Contains(strings.ToLower(streamURL), "mjpeg"):
		return StrategySnapshot
	default:
		return StrategySegmented
	}
}

// restartTokens is shared by every snapshot player in the process so two
// restarts never produce the same cache-busting value.
var restartTokens atomic.Uint64

func nextRestartToken() uint64 {
	return restartTokens.Add(1)
}

// withToken appends the cache-busting query parameter to rawURL.
func withToken(rawURL string, token uint64) string {
	if token == 0 {
		return rawURL
	}
	param := "_ts=" + strconv.FormatUint(token, 10)
	base, fragment, hasFragment := strings.Cut(rawURL, "#")
	switch {
	case !strings.Contains(base, "?"):
		base += "?" + param
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		base += param
	default:
		base += "&" + param
	}
	if hasFragment {
		return base + "#" + fragment
	}
	return base
}
