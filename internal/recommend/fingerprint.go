package recommend

import (
	"fmt"

	"github.com/bousai-navi/backend/internal/storage/models"
)

// Fingerprint derives the cache key from the five household composition
// fields. The canonical form is JSON with a fixed field order and no
// whitespace, so two profiles with equal composition always produce the same
// bytes regardless of process, platform, or any other profile field. The
// string is stored verbatim as the cache key.
func Fingerprint(p models.HouseholdProfile) string {
	return fmt.Sprintf(
		`{"adults":%d,"children":%d,"infants":%d,"elderly":%d,"has_pet":%t}`,
		p.Adults, p.Children, p.Infants, p.Elderly, p.HasPet,
	)
}
