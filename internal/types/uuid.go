package types

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for entity identifiers. IDs look like "inv_01J8ZQ...".
const (
	UUID_PREFIX_SUBSCRIPTION_GROUP = "subg"
	UUID_PREFIX_SUBSCRIPTION       = "sub"
	UUID_PREFIX_INVOICE            = "inv"
	UUID_PREFIX_CREDIT             = "cred"
	UUID_PREFIX_ORDER              = "ord"
	UUID_PREFIX_COUPON             = "cpn"
	UUID_PREFIX_VENDOR_PRICE       = "vprc"
	UUID_PREFIX_VENDOR_HOLIDAY     = "vhol"
	UUID_PREFIX_JOB_RUN            = "run"
	UUID_PREFIX_REQUEST            = "req"
)

// GenerateUUID returns a lowercase ULID.
func GenerateUUID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	return strings.ToLower(id.String())
}

// GenerateUUIDWithPrefix returns a prefixed ULID for the given entity.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
