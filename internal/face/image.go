package face

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeImagePayload accepts either a raw base64 string or a browser data
// URL ("data:image/jpeg;base64,...") and returns the image bytes.
func DecodeImagePayload(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	if i := strings.IndexByte(data, ','); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return raw, nil
}
