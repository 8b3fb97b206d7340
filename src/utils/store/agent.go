package store

import (
	"errors"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func LockAgent(tx *gorm.DB, id string) (out *model.Agent, err error) {
	out = new(model.Agent)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(out).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("agent %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return
}

// Increments the open task count unless the agent is at capacity. Returns false if at capacity
func ClaimOpenTask(tx *gorm.DB, agentID string, capacity int) (ok bool, err error) {
	result := tx.Model(&model.Agent{}).
		Where("id = ?", agentID).
		Where("open_task_count < ?", capacity).
		Update("open_task_count", gorm.Expr("open_task_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Decrements the open task count, never below zero
func ReleaseOpenTask(tx *gorm.DB, agentID string) (err error) {
	return tx.Model(&model.Agent{}).
		Where("id = ?", agentID).
		Where("open_task_count > 0").
		Update("open_task_count", gorm.Expr("open_task_count - 1")).
		Error
}
