package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Agent as registered by operations. Open task count is maintained by the service
type Registration struct {
	ID                  string   `json:"id"`
	AgentCode           string   `json:"agent_code"`
	Name                string   `json:"name"`
	ServiceablePincodes []string `json:"serviceable_pincodes"`
	HomeCity            string   `json:"home_city"`
}

type Directory struct {
	tx  *store.Transactor
	log *logrus.Entry
}

func NewDirectory(tx *store.Transactor) (self *Directory) {
	self = new(Directory)
	self.tx = tx
	self.log = l.NewSublogger("agent-directory")
	return
}

func (self Registration) validate() error {
	if strings.TrimSpace(self.AgentCode) == "" {
		return errs.InvalidArgument("agent_code is required")
	}
	for _, p := range self.ServiceablePincodes {
		if !listing.IsPincode(p) {
			return errs.InvalidArgument("agent %s: %q is not a 6 digit pincode", self.AgentCode, p)
		}
	}
	if len(self.ServiceablePincodes) == 0 && strings.TrimSpace(self.HomeCity) == "" {
		return errs.InvalidArgument("agent %s serves nothing, set pincodes or home_city", self.AgentCode)
	}
	return nil
}

// Creates the agent or updates the one with the same code
func (self *Directory) Upsert(ctx context.Context, in Registration) (out *model.Agent, err error) {
	err = in.validate()
	if err != nil {
		return
	}

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out = new(model.Agent)
		err = tx.Where("agent_code = ?", in.AgentCode).First(out).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			id := in.ID
			if id == "" {
				id = uuid.NewString()
			}
			now := time.Now().UTC()
			out = &model.Agent{
				ID:                  id,
				AgentCode:           in.AgentCode,
				Name:                in.Name,
				ServiceablePincodes: model.Pincodes(in.ServiceablePincodes),
				HomeCity:            strings.TrimSpace(in.HomeCity),
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			return tx.Create(out).Error
		}
		if err != nil {
			return
		}

		return tx.Model(out).Updates(map[string]interface{}{
			"name":                 in.Name,
			"serviceable_pincodes": model.Pincodes(in.ServiceablePincodes),
			"home_city":            strings.TrimSpace(in.HomeCity),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	self.log.WithField("agent_code", out.AgentCode).Info("Agent registered")
	return
}

func (self *Directory) Get(ctx context.Context, id string) (out *model.Agent, err error) {
	out = new(model.Agent)
	err = self.tx.DB().WithContext(ctx).Where("id = ?", id).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("agent %s not found", id)
	}
	return
}

func (self *Directory) List(ctx context.Context) (out []*model.Agent, err error) {
	err = self.tx.DB().WithContext(ctx).Order("agent_code ASC").Find(&out).Error
	return
}

// Recomputes open task counts from listings. Returns the number of corrected agents
func (self *Directory) Reconcile(ctx context.Context) (corrected int, err error) {
	agents, err := self.List(ctx)
	if err != nil {
		return
	}

	for _, a := range agents {
		var fixed bool
		err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
			fixed = false

			current, err := store.LockAgent(tx, a.ID)
			if err != nil {
				return
			}

			var count int64
			err = tx.Model(&model.Listing{}).
				Where("agent_id = ?", current.ID).
				Where("status IN ?", model.ActiveTaskStatuses).
				Count(&count).
				Error
			if err != nil {
				return
			}

			if int64(current.OpenTaskCount) == count {
				return
			}

			self.log.WithField("agent_code", current.AgentCode).
				WithField("stored", current.OpenTaskCount).
				WithField("actual", count).
				Warn("Open task count out of sync, fixing")

			fixed = true
			return tx.Model(current).Update("open_task_count", count).Error
		})
		if err != nil {
			return
		}
		if fixed {
			corrected++
		}
	}
	return
}
