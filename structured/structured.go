// Package structured provides agents that answer with JSON documents instead of prose.
//
// Three agents are built in: a weather reporter, a project task analyst and a person
// profiler. Each has a persona, routing keywords and an output schema. [NewController]
// wires them to a keyword router and a controller:
//
//	c := structured.NewController(models, "mistral", nil)
//	res, err := c.Handle(ctx, "What's the weather like in Paris?")
//	report := res.Structured.(map[string]any)
//	fmt.Println(report["condition"], report["temperature"])
package structured

import (
	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/controller"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/router"
	"github.com/rickchristie/orchestra/schema"
)

// Agent names.
const (
	WeatherAgent      = "weather_agent"
	TaskAnalysisAgent = "task_analysis_agent"
	PersonInfoAgent   = "person_info_agent"
)

// DefaultModel is the model reference used by the command line when none is given.
const DefaultModel = "mistral"

// Conditions are the weather conditions accepted by the weather schema.
var Conditions = []any{"sunny", "cloudy", "rainy", "snowy", "stormy"}

// Priorities are the task priorities accepted by the task analysis schema.
var Priorities = []any{"low", "medium", "high", "urgent"}

const nonBlank = `\S`

// WeatherSchema describes a weather report.
func WeatherSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"location":    schema.String("The location for which weather is reported").Pattern(nonBlank),
		"condition":   schema.String("Current weather condition").Enum(Conditions...),
		"temperature": schema.Integer("Temperature in Fahrenheit"),
		"humidity":    schema.Integer("Humidity percentage").Min(0).Max(100),
		"description": schema.String("Brief description of the weather").MaxLength(280),
	}, "location", "condition", "temperature", "description")
}

// TaskAnalysisSchema describes a project broken down into tasks.
func TaskAnalysisSchema() map[string]any {
	task := schema.Object(map[string]*schema.Property{
		"title":           schema.String("Title of the task").Pattern(nonBlank),
		"description":     schema.String("Detailed description of the task"),
		"priority":        schema.String("Priority level of the task").Enum(Priorities...),
		"estimated_hours": schema.Number("Estimated hours to complete").Min(0),
	}, "title", "description", "priority")

	return schema.Object(map[string]*schema.Property{
		"project_name":              schema.String("Name of the project being analyzed").Pattern(nonBlank),
		"total_tasks":               schema.Integer("Total number of tasks identified").Min(0),
		"tasks":                     schema.Array("List of individual tasks", task),
		"estimated_completion_time": schema.String("Estimated time to complete all tasks"),
		"recommendations": schema.Array("List of recommendations for project success",
			map[string]any{"type": "string"}),
	}, "project_name", "total_tasks", "tasks", "estimated_completion_time", "recommendations")
}

// PersonSchema describes a person.
func PersonSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"name":       schema.String("Full name of the person").Pattern(nonBlank),
		"age":        schema.Integer("Age in years").Min(0),
		"occupation": schema.String("Primary occupation"),
		"location":   schema.String("Current location"),
		"notable_achievements": schema.Array("List of notable achievements",
			map[string]any{"type": "string"}).Default([]any{}),
	}, "name")
}

// Agents returns the built-in agents, all running on modelRef. The weather agent comes
// first and is the default.
func Agents(modelRef string) []orchestra.AgentSpec {
	return []orchestra.AgentSpec{
		{
			Name:  WeatherAgent,
			Title: "Weather Assistant",
			Persona: "You are a weather assistant. Given a weather query, provide accurate weather " +
				"information in the specified structured format. Use realistic weather data for the " +
				"requested location.",
			ModelRef:    modelRef,
			Keywords:    []string{"weather", "temperature", "rain", "sunny", "cloudy"},
			Specialties: []string{"Weather reports"},
		},
		{
			Name:  TaskAnalysisAgent,
			Title: "Project Assistant",
			Persona: "You are a project management assistant. Given a project description, break it " +
				"down into specific tasks with priorities and time estimates. Provide practical " +
				"recommendations.",
			ModelRef:    modelRef,
			Keywords:    []string{"task", "project", "plan", "todo", "work"},
			Specialties: []string{"Project planning", "Task breakdown"},
		},
		{
			Name:  PersonInfoAgent,
			Title: "Information Assistant",
			Persona: "You are an information assistant. Given a query about a person, provide factual " +
				"information in the specified structured format. Only include verified information.",
			ModelRef:    modelRef,
			Keywords:    []string{"who is", "person", "biography", "about"},
			Specialties: []string{"Biographies"},
		},
	}
}

// Registry returns the built-in agents as a registry with the weather agent as default.
func Registry(modelRef string) *orchestra.Registry {
	return orchestra.MustNewRegistry(WeatherAgent, Agents(modelRef)...)
}

// Schemas returns the compiled output schema of every built-in agent, keyed by name.
func Schemas() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		WeatherAgent:      schema.MustCompile(WeatherSchema()),
		TaskAnalysisAgent: schema.MustCompile(TaskAnalysisSchema()),
		PersonInfoAgent:   schema.MustCompile(PersonSchema()),
	}
}

// NewController routes by keyword among the built-in agents and has the selected agent
// answer into its schema. h may be nil.
func NewController(models orchestra.ModelSet, modelRef string, h *hooks.Registry) *controller.Controller {
	c := controller.New(router.NewKeyword(Registry(modelRef)).WithHooks(h), models).WithHooks(h)
	for name, s := range Schemas() {
		c.WithOutputSchema(name, s)
	}
	return c
}
