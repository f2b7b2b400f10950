package enums

// VoyageName is the kind of pilgrimage.
type VoyageName string

const (
	VoyageHajj   VoyageName = "HAJJ"
	VoyageOumrah VoyageName = "OUMRAH"
)

// Valid reports whether v is HAJJ or OUMRAH.
func (v VoyageName) Valid() bool {
	return v == VoyageHajj || v == VoyageOumrah
}
