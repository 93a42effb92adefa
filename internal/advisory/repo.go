package advisory

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
)

// Projection is the per-license view sent to the analysis prompt. The
// field names are part of the prompt contract and stay in Portuguese.
type Projection struct {
	Empresa    string `json:"empresa"`
	CNPJ       string `json:"cnpj"`
	Documento  string `json:"documento"`
	Tipo       string `json:"tipo"`
	Vencimento string `json:"vencimento"`
}

// Repository loads the license/company projection for analysis.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to advisory lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type projectionRow struct {
	Name           string
	Type           string
	ExpirationDate time.Time
	FantasyName    string
	CNPJ           string
}

// Projections returns one row per license joined with its company.
func (r *Repository) Projections(ctx context.Context) ([]Projection, error) {
	var rows []projectionRow
	err := r.db.WithContext(ctx).Model(&models.License{}).
		Select("licenses.name, licenses.type, licenses.expiration_date, companies.fantasy_name, companies.cnpj").
		Joins("JOIN companies ON companies.id = licenses.company_id").
		Order("licenses.expiration_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	projections := make([]Projection, 0, len(rows))
	for _, row := range rows {
		empresa := row.FantasyName
		if empresa == "" {
			empresa = "Desconhecida"
		}
		cnpj := row.CNPJ
		if cnpj == "" {
			cnpj = "N/A"
		}
		projections = append(projections, Projection{
			Empresa:    empresa,
			CNPJ:       cnpj,
			Documento:  row.Name,
			Tipo:       row.Type,
			Vencimento: row.ExpirationDate.Format("2006-01-02"),
		})
	}
	return projections, nil
}
