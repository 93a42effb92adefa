package enums

import "fmt"

// LicenseStatus is the derived expiration classification. It is never stored;
// it is always recomputed from the expiration date and a reference time.
type LicenseStatus string

const (
	LicenseStatusExpired LicenseStatus = "expired"
	LicenseStatusWarning LicenseStatus = "warning"
	LicenseStatusActive  LicenseStatus = "active"
)

var validLicenseStatuses = []LicenseStatus{
	LicenseStatusExpired,
	LicenseStatusWarning,
	LicenseStatusActive,
}

// String implements fmt.Stringer.
func (l LicenseStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known classification.
func (l LicenseStatus) IsValid() bool {
	for _, candidate := range validLicenseStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLicenseStatus converts raw input into LicenseStatus.
func ParseLicenseStatus(value string) (LicenseStatus, error) {
	for _, candidate := range validLicenseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid license status %q", value)
}

// LicenseType identifies the issuing body of an alvará.
type LicenseType string

const (
	LicenseTypePoliciaFederal LicenseType = "policia_federal"
	LicenseTypePoliciaCivil   LicenseType = "policia_civil"
	LicenseTypeIbama          LicenseType = "ibama"
	LicenseTypeCetesb         LicenseType = "cetesb"
	LicenseTypeBombeiros      LicenseType = "bombeiros"
	LicenseTypePrefeitura     LicenseType = "prefeitura"
	LicenseTypeOutro          LicenseType = "outro"
)

var validLicenseTypes = []LicenseType{
	LicenseTypePoliciaFederal,
	LicenseTypePoliciaCivil,
	LicenseTypeIbama,
	LicenseTypeCetesb,
	LicenseTypeBombeiros,
	LicenseTypePrefeitura,
	LicenseTypeOutro,
}

var licenseTypeNames = map[LicenseType]string{
	LicenseTypePoliciaFederal: "Polícia Federal",
	LicenseTypePoliciaCivil:   "Polícia Civil",
	LicenseTypeIbama:          "IBAMA",
	LicenseTypeCetesb:         "Cetesb",
	LicenseTypeBombeiros:      "Corpo de Bombeiros",
	LicenseTypePrefeitura:     "Prefeitura",
	LicenseTypeOutro:          "Outro",
}

// String implements fmt.Stringer.
func (l LicenseType) String() string {
	return string(l)
}

// DisplayName returns the human-readable issuing body name.
func (l LicenseType) DisplayName() string {
	if name, ok := licenseTypeNames[l]; ok {
		return name
	}
	return string(l)
}

// IsValid reports whether the value matches a known license type.
func (l LicenseType) IsValid() bool {
	for _, candidate := range validLicenseTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLicenseType converts raw input into LicenseType.
func ParseLicenseType(value string) (LicenseType, error) {
	for _, candidate := range validLicenseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid license type %q", value)
}

// LicenseTypes returns the canonical type list in display order.
func LicenseTypes() []LicenseType {
	out := make([]LicenseType, len(validLicenseTypes))
	copy(out, validLicenseTypes)
	return out
}
