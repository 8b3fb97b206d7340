package agent

import (
	"testing"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"github.com/stretchr/testify/require"
)

func TestServes(t *testing.T) {
	byPincode := &model.Agent{ServiceablePincodes: model.Pincodes{"682001", "682002"}, HomeCity: "Kochi"}
	require.True(t, Serves(byPincode, "682001", "Kochi"))
	require.False(t, Serves(byPincode, "682030", "Kochi"))

	byCity := &model.Agent{HomeCity: "Kochi"}
	require.True(t, Serves(byCity, "682030", "KOCHI"))
	require.True(t, Serves(byCity, "999999", " kochi "))
	require.False(t, Serves(byCity, "682030", "Thrissur"))

	nowhere := &model.Agent{}
	require.False(t, Serves(nowhere, "682001", ""))
}

func TestRank(t *testing.T) {
	listing := &model.Listing{PickupPincode: "682001", PickupCity: "Kochi"}
	agents := []*model.Agent{
		{AgentCode: "A", OpenTaskCount: 5, ServiceablePincodes: model.Pincodes{"682001"}},
		{AgentCode: "B", OpenTaskCount: 1, ServiceablePincodes: model.Pincodes{"682001"}},
		{AgentCode: "C", OpenTaskCount: 1, HomeCity: "kochi"},
		{AgentCode: "D", OpenTaskCount: 0, ServiceablePincodes: model.Pincodes{"560001"}, HomeCity: "Kochi"},
		{AgentCode: "E", OpenTaskCount: 0, HomeCity: "Kochi"},
	}

	ranked := Rank(agents, listing, DefaultCapacity)
	codes := make([]string, len(ranked))
	for i, a := range ranked {
		codes[i] = a.AgentCode
	}
	require.Equal(t, []string{"E", "B", "C"}, codes)
}

func TestRankCapacity(t *testing.T) {
	listing := &model.Listing{PickupPincode: "682001", PickupCity: "Kochi"}
	agents := []*model.Agent{
		{AgentCode: "A", OpenTaskCount: 5, ServiceablePincodes: model.Pincodes{"682001"}},
		{AgentCode: "B", OpenTaskCount: 1, ServiceablePincodes: model.Pincodes{"682001"}},
	}

	ranked := Rank(agents, listing, 5)
	require.Len(t, ranked, 1)
	require.Equal(t, "B", ranked[0].AgentCode)

	require.Empty(t, Rank(agents, listing, 1))
}
