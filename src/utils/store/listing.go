package store

import (
	"errors"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Loads the listing and locks its row until the transaction ends
func LockListing(tx *gorm.DB, id string) (out *model.Listing, err error) {
	out = new(model.Listing)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(out).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("listing %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return
}

func GetListing(db *gorm.DB, id string) (out *model.Listing, err error) {
	out = new(model.Listing)
	err = db.Where("id = ?", id).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("listing %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return
}

// Compare-and-set on the status and version the listing was read with.
// Listing is reloaded after a successful update.
func UpdateListing(tx *gorm.DB, listing *model.Listing, updates map[string]interface{}) (err error) {
	updates["version"] = listing.Version + 1
	updates["updated_at"] = time.Now().UTC()

	result := tx.Model(&model.Listing{}).
		Where("id = ?", listing.ID).
		Where("status = ?", listing.Status).
		Where("version = ?", listing.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}

	// Fresh struct, so columns set back to NULL don't keep their old values
	fresh := new(model.Listing)
	err = tx.Where("id = ?", listing.ID).First(fresh).Error
	if err != nil {
		return
	}
	*listing = *fresh
	return
}
