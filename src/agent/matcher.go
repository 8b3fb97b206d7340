package agent

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AssignResult struct {
	Assignment *model.Assignment
	Listing    *model.Listing
	Agent      *model.Agent
}

// Matches pickups with field agents under the workload cap
type Matcher struct {
	tx       *store.Transactor
	monitor  monitoring.Monitor
	log      *logrus.Entry
	capacity int
}

func NewMatcher(tx *store.Transactor) (self *Matcher) {
	self = new(Matcher)
	self.monitor = monitoring.NewNoop()
	self.tx = tx
	self.capacity = DefaultCapacity
	self.log = l.NewSublogger("matcher")
	return
}

func (self *Matcher) WithCapacity(v int) *Matcher {
	self.capacity = v
	return self
}

func (self *Matcher) WithMonitor(monitor monitoring.Monitor) *Matcher {
	self.monitor = monitor
	return self
}

// Agents below capacity, least loaded first
func (self *Matcher) candidates(db *gorm.DB) (out []*model.Agent, err error) {
	err = db.Where("open_task_count < ?", self.capacity).
		Order("open_task_count ASC").
		Order("agent_code ASC").
		Find(&out).
		Error
	return
}

// Ranked agents that could take the pickup right now
func (self *Matcher) FindEligibleAgents(ctx context.Context, listingID string) (out []*model.Agent, err error) {
	db := self.tx.DB().WithContext(ctx)

	current, err := store.GetListing(db, listingID)
	if err != nil {
		return
	}

	agents, err := self.candidates(db)
	if err != nil {
		return
	}

	return Rank(agents, current, self.capacity), nil
}

// Listing must be waiting for an agent and have no assignment yet
func (self *Matcher) checkAssignable(tx *gorm.DB, current *model.Listing) (err error) {
	if current.Status.HasAgent() {
		return errs.New(errs.KindAlreadyAssigned, "listing %s is already assigned", current.ID)
	}

	var existing int64
	err = tx.Model(&model.Assignment{}).Where("listing_id = ?", current.ID).Count(&existing).Error
	if err != nil {
		return
	}
	if existing > 0 {
		return errs.New(errs.KindAlreadyAssigned, "listing %s is already assigned", current.ID)
	}

	return listing.Expect(current, model.ListingStatusBidAccepted)
}

// Binds the agent. Returns NoEligibleAgent if the agent can't take it
func (self *Matcher) bind(tx *gorm.DB, current *model.Listing, agentID, assignedBy string) (out *AssignResult, err error) {
	agent, err := store.LockAgent(tx, agentID)
	if err != nil {
		return
	}

	if !IsEligible(agent, current, self.capacity) {
		return nil, errs.New(errs.KindNoEligibleAgent, "agent %s can't take listing %s", agent.AgentCode, current.ID)
	}

	claimed, err := store.ClaimOpenTask(tx, agent.ID, self.capacity)
	if err != nil {
		return
	}
	if !claimed {
		return nil, errs.New(errs.KindNoEligibleAgent, "agent %s is at capacity", agent.AgentCode)
	}
	agent.OpenTaskCount++

	now := time.Now().UTC()
	assignment := &model.Assignment{
		ID:         uuid.NewString(),
		ListingID:  current.ID,
		AgentID:    agent.ID,
		AssignedBy: assignedBy,
		AssignedAt: now,
	}
	err = tx.Create(assignment).Error
	if err != nil {
		return
	}

	err = listing.Transition(tx, current, model.ListingStatusAgentAssigned, map[string]interface{}{
		"agent_id":    sql.NullString{String: agent.ID, Valid: true},
		"assigned_at": sql.NullTime{Time: now, Valid: true},
	})
	if err != nil {
		return
	}

	err = events.Record(tx, current.ID, model.EventAgentAssigned, map[string]interface{}{
		"agent_id":    agent.ID,
		"agent_code":  agent.AgentCode,
		"assigned_by": assignedBy,
	})
	if err != nil {
		return
	}

	return &AssignResult{Assignment: assignment, Listing: current, Agent: agent}, nil
}

// Assigns the chosen agent. Eligibility is checked again under lock
func (self *Matcher) Assign(ctx context.Context, listingID, agentID, assignedBy string) (out *AssignResult, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		current, err := store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = self.checkAssignable(tx, current)
		if err != nil {
			return
		}

		out, err = self.bind(tx, current, agentID, assignedBy)
		return
	})
	if err != nil {
		return nil, err
	}

	self.onAssigned(out)
	return
}

// Assigns the best ranked agent that can still take the pickup
func (self *Matcher) AutoAssign(ctx context.Context, listingID, assignedBy string) (out *AssignResult, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		current, err := store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = self.checkAssignable(tx, current)
		if err != nil {
			return
		}

		agents, err := self.candidates(tx)
		if err != nil {
			return
		}

		for _, agent := range Rank(agents, current, self.capacity) {
			out, err = self.bind(tx, current, agent.ID, assignedBy)
			if errors.Is(err, errs.ErrNoEligibleAgent) {
				// Load changed since the ranking, try the next one
				continue
			}
			return
		}

		return errs.New(errs.KindNoEligibleAgent, "no agent can take listing %s in %s/%s", current.ID, current.PickupPincode, current.PickupCity)
	})
	if err != nil {
		return nil, err
	}

	self.onAssigned(out)
	return
}

func (self *Matcher) onAssigned(out *AssignResult) {
	self.monitor.GetReport().Market.State.AgentsAssigned.Inc()
	self.log.WithField("listing_id", out.Listing.ID).
		WithField("agent_code", out.Agent.AgentCode).
		Info("Agent assigned")
}
