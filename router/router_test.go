package router

import (
	"github.com/rickchristie/orchestra"
)

func testRegistry() *orchestra.Registry {
	return orchestra.MustNewRegistry("dr_code",
		orchestra.AgentSpec{
			Name:        "dr_code",
			Title:       "Dr. Code",
			Persona:     "You are Dr. Code.",
			ModelRef:    "gpt-oss:20b",
			Keywords:    []string{"code", "python", "programming", "debug"},
			Specialties: []string{"Programming and software development", "Debugging and troubleshooting"},
		},
		orchestra.AgentSpec{
			Name:        "creative_writer",
			Title:       "Creative Writer",
			Persona:     "You are a Creative Writer.",
			ModelRef:    "mistral",
			Keywords:    []string{"story", "poem", "creative", "write"},
			Specialties: []string{"Creative writing and storytelling"},
		},
		orchestra.AgentSpec{
			Name:        "business_analyst",
			Title:       "Business Analyst",
			Persona:     "You are a Business Analyst.",
			ModelRef:    "gpt-oss:20b",
			Keywords:    []string{"business", "market", "strategy", "revenue"},
			Specialties: []string{"Business strategy and planning"},
		},
		orchestra.AgentSpec{
			Name:        "witty_comedian",
			Title:       "Witty Comedian",
			Persona:     "You are a Witty Comedian.",
			ModelRef:    "gemma3:1b",
			Keywords:    []string{"joke", "funny", "humor"},
			Specialties: []string{"Humor and entertainment", "Jokes and comedic content"},
		},
	)
}
