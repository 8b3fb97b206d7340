package agent

import (
	"strings"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"golang.org/x/exp/slices"
)

const DefaultCapacity = 5

// Agent covers the pickup location. Agents without pincodes cover their whole home city
func Serves(agent *model.Agent, pincode, city string) bool {
	if len(agent.ServiceablePincodes) > 0 {
		return agent.ServiceablePincodes.Contains(pincode)
	}
	return agent.HomeCity != "" && strings.EqualFold(strings.TrimSpace(agent.HomeCity), strings.TrimSpace(city))
}

func IsEligible(agent *model.Agent, listing *model.Listing, capacity int) bool {
	return agent.OpenTaskCount < capacity && Serves(agent, listing.PickupPincode, listing.PickupCity)
}

// Eligible agents, least loaded first, ties broken by agent code
func Rank(agents []*model.Agent, listing *model.Listing, capacity int) (out []*model.Agent) {
	out = make([]*model.Agent, 0, len(agents))
	for _, agent := range agents {
		if IsEligible(agent, listing, capacity) {
			out = append(out, agent)
		}
	}

	slices.SortStableFunc(out, func(a, b *model.Agent) int {
		if a.OpenTaskCount != b.OpenTaskCount {
			return a.OpenTaskCount - b.OpenTaskCount
		}
		return strings.Compare(a.AgentCode, b.AgentCode)
	})
	return
}
