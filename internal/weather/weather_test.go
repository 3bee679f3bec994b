package weather

import (
	"math"
	"testing"
)

func TestMapToCrowd(t *testing.T) {
	cases := []struct {
		name          string
		cond          *Conditions
		thirst        float64
		happinessMult float64
	}{
		{name: "nil conditions", cond: nil, thirst: 1.0, happinessMult: 1.0},
		{name: "mild day", cond: &Conditions{Temp: 18}, thirst: 1.0, happinessMult: 1.0},
		{name: "warm day", cond: &Conditions{Temp: 30}, thirst: 1.3, happinessMult: 1.0},
		{name: "heatwave caps", cond: &Conditions{Temp: 60}, thirst: 2.0, happinessMult: 1.0},
		{name: "rain", cond: &Conditions{Temp: 15, IsRain: true}, thirst: 1.0, happinessMult: 1.4},
		{name: "storm beats rain", cond: &Conditions{Temp: 15, IsRain: true, IsStorm: true}, thirst: 1.0, happinessMult: 2.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := MapToCrowd(c.cond)
			if math.Abs(m.ThirstMult-c.thirst) > 1e-9 {
				t.Errorf("thirst mult=%v want %v", m.ThirstMult, c.thirst)
			}
			if math.Abs(m.HappinessDecayMult-c.happinessMult) > 1e-9 {
				t.Errorf("happiness mult=%v want %v", m.HappinessDecayMult, c.happinessMult)
			}
		})
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if NewClient("", "Anywhere") != nil {
		t.Fatal("empty API key should yield a nil client")
	}
	if NewClient("key", "") == nil {
		t.Fatal("client with a key should not be nil")
	}
}
