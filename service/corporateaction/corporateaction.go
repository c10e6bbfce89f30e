// Package corporateaction persists normalized corporate action records.
// Writes are idempotent: the parent row upserts on the deterministic
// event id, citations merge on their natural key, and the dependent
// child rows are replaced wholesale on every persist.
package corporateaction

import (
	"fmt"

	"github.com/alpacahq/gofilings/gferrors"
	"github.com/alpacahq/gofilings/models"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type CorporateActionService interface {
	Persist(ca *models.CorporateAction) error
	PersistBatch(cas []*models.CorporateAction) (int, error)
	Get(eventID string) (*models.CorporateAction, error)
	GetRow(eventID string) (*models.CorporateActionRow, error)
	List(q ListQuery) ([]models.CorporateActionRow, error)
	Sources(eventID string) ([]models.SourceRow, error)
	WithTx(tx *gorm.DB) CorporateActionService
}

type corporateActionService struct {
	CorporateActionService
	tx *gorm.DB
}

func Service() CorporateActionService {
	return &corporateActionService{}
}

func (s *corporateActionService) WithTx(tx *gorm.DB) CorporateActionService {
	s.tx = tx
	return s
}

// ListQuery filters the read path. Zero values mean "any".
type ListQuery struct {
	Ticker        string
	IssuerCIK     string
	ActionType    string
	Status        string
	EffectiveFrom string
	EffectiveTo   string
	Limit         int
	Offset        int
}

const defaultListLimit = 100

// Persist validates and upserts one aggregate with its child rows in a
// single transaction. Records missing an event id get one derived from
// their content first, so two writers racing on the same logical event
// converge on the same row.
func (s *corporateActionService) Persist(ca *models.CorporateAction) error {
	normalized, err := models.NewCorporateAction(*ca)
	if err != nil {
		return gferrors.InvalidRecord.WithMsg(err.Error())
	}

	tx := s.tx
	owned := tx == nil
	if owned {
		tx = db.DB().Begin()
	}

	if err := persistTx(tx, normalized); err != nil {
		if owned {
			tx.Rollback()
		}
		return err
	}

	if owned {
		if err := tx.Commit().Error; err != nil {
			return gferrors.PersistenceFailure.WithError(err)
		}
	}
	return nil
}

// PersistBatch persists each aggregate in its own transaction and keeps
// going past individual failures. It returns how many committed along
// with an error describing any that did not.
func (s *corporateActionService) PersistBatch(cas []*models.CorporateAction) (int, error) {
	if len(cas) == 0 {
		return 0, nil
	}

	persisted := 0
	var failures []string

	for i, ca := range cas {
		if err := s.Persist(ca); err != nil {
			log.Error(
				"corporate action persist failed",
				"index", i,
				"event_id", ca.EventID,
				"error", gferrors.Format(err))
			failures = append(failures, fmt.Sprintf("[%d] %v", i, err))
			continue
		}
		persisted++
	}

	if len(failures) > 0 {
		return persisted, gferrors.PersistenceFailure.WithError(
			fmt.Errorf("%d of %d records failed: %v", len(failures), len(cas), failures))
	}
	return persisted, nil
}

func persistTx(tx *gorm.DB, ca *models.CorporateAction) error {
	row, err := ca.Row()
	if err != nil {
		return gferrors.PersistenceFailure.WithError(errors.Wrap(err, "serializing details"))
	}
	if err := upsertParent(tx, row); err != nil {
		return gferrors.PersistenceFailure.WithError(errors.Wrap(err, "upserting corporate action"))
	}
	if err := mergeSources(tx, ca); err != nil {
		return gferrors.PersistenceFailure.WithError(errors.Wrap(err, "merging sources"))
	}
	if err := replaceConsiderationLegs(tx, ca); err != nil {
		return gferrors.PersistenceFailure.WithError(errors.Wrap(err, "replacing consideration legs"))
	}
	if err := replaceProvenance(tx, ca); err != nil {
		return gferrors.PersistenceFailure.WithError(errors.Wrap(err, "replacing provenance"))
	}
	return nil
}

// Get loads the full aggregate back from its stored JSON snapshot.
func (s *corporateActionService) Get(eventID string) (*models.CorporateAction, error) {
	row, err := s.GetRow(eventID)
	if err != nil {
		return nil, err
	}
	ca, err := row.Aggregate()
	if err != nil {
		return nil, gferrors.InternalServerError.WithError(err)
	}
	return ca, nil
}

func (s *corporateActionService) GetRow(eventID string) (*models.CorporateActionRow, error) {
	row := &models.CorporateActionRow{}
	q := s.tx.Where("event_id = ?", eventID).Find(row)

	if q.RecordNotFound() {
		return nil, gferrors.NotFound.WithMsg(fmt.Sprintf("corporate action not found for %v", eventID))
	}
	if q.Error != nil {
		return nil, gferrors.InternalServerError.WithError(q.Error)
	}
	return row, nil
}

func (s *corporateActionService) List(lq ListQuery) ([]models.CorporateActionRow, error) {
	rows := []models.CorporateActionRow{}

	q := s.tx
	if lq.Ticker != "" {
		q = q.Where("ticker = ?", lq.Ticker)
	}
	if lq.IssuerCIK != "" {
		q = q.Where("issuer_cik = ?", lq.IssuerCIK)
	}
	if lq.ActionType != "" {
		q = q.Where("action_type = ?", lq.ActionType)
	}
	if lq.Status != "" {
		q = q.Where("status = ?", lq.Status)
	}
	if lq.EffectiveFrom != "" {
		q = q.Where("effective_date >= ?", lq.EffectiveFrom)
	}
	if lq.EffectiveTo != "" {
		q = q.Where("effective_date <= ?", lq.EffectiveTo)
	}

	limit := lq.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q = q.
		Order("effective_date DESC NULLS LAST, event_id").
		Limit(limit).
		Offset(lq.Offset).
		Find(&rows)

	if q.Error != nil && !q.RecordNotFound() {
		return nil, gferrors.InternalServerError.WithError(q.Error)
	}
	return rows, nil
}

// Sources returns the stored citation trail for an event, oldest first.
func (s *corporateActionService) Sources(eventID string) ([]models.SourceRow, error) {
	rows := []models.SourceRow{}
	q := s.tx.Where("event_id = ?", eventID).Order("id").Find(&rows)
	if q.Error != nil && !q.RecordNotFound() {
		return nil, gferrors.InternalServerError.WithError(q.Error)
	}
	return rows, nil
}
