package response

import (
	"crypto/sha1"
	"fmt"
)

// prepareEtagValue derives a strong validator from val.
func prepareEtagValue(val string) string {
	return fmt.Sprintf(`"%x"`, sha1.Sum([]byte(val)))
}
