package bilibili

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type cookiePair struct {
	key   string
	value string
}

// newDeviceCookies builds the browser-identity cookies the passport service
// expects alongside QR requests. A fresh identity is generated per process,
// the same way a first-visit browser session would mint one.
func newDeviceCookies(now time.Time) []cookiePair {
	device := strings.ToUpper(uuid.New().String())
	fingerprint := strings.ReplaceAll(uuid.New().String(), "-", "")
	return []cookiePair{
		{key: "buvid3", value: device + "infoc"},
		{key: "b_nut", value: fmt.Sprintf("%d", now.Unix())},
		{key: "_uuid", value: strings.ToUpper(uuid.New().String()) + "infoc"},
		{key: "buvid_fp", value: fingerprint},
		{key: "enable_web_push", value: "DISABLE"},
		{key: "sid", value: "qrlogin"},
		{key: "CURRENT_FNVAL", value: "2000"},
	}
}

func cookieHeaderValue(pairs []cookiePair) string {
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		parts = append(parts, pair.key+"="+pair.value)
	}
	return strings.Join(parts, "; ")
}

// mergeCookies appends harvested pairs onto base, replacing values for keys
// the base already carries while preserving first-seen order.
func mergeCookies(base, harvested []cookiePair) []cookiePair {
	merged := make([]cookiePair, len(base))
	copy(merged, base)
	index := make(map[string]int, len(merged))
	for i, pair := range merged {
		index[pair.key] = i
	}
	for _, pair := range harvested {
		if i, ok := index[pair.key]; ok {
			merged[i].value = pair.value
			continue
		}
		index[pair.key] = len(merged)
		merged = append(merged, pair)
	}
	return merged
}
