// internal/service/radius/attrs.go
package radius

// Attribute names understood by the NAS fleet (Mikrotik dialect).
const (
	AttrCleartextPassword = "Cleartext-Password"
	AttrFramedIPAddress   = "Framed-IP-Address"
	AttrRateLimit         = "Mikrotik-Rate-Limit"
)

// GroupIsolated is the walled-garden group suspended customers land in. The
// NAS sees it as radusergroup membership, not a reply attribute.
const GroupIsolated = "ISOLATED"

// Assignment operators in the AAA schema.
const (
	OpSet   = ":="
	OpEqual = "="
)
