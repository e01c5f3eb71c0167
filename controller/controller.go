// Package controller answers requests end to end: a router picks the agent, then the
// agent's model answers in the agent's persona.
//
//	c := controller.New(router.NewKeyword(agents), models)
//	res, err := c.Handle(ctx, "Tell me a funny joke about cats")
//	fmt.Println(res.Decision.Selected.Name, res.Answer)
//
// With WithToolLoop the agent answers through a tool loop instead of a single call.
// With WithOutputSchema an agent answers with a JSON document instead of prose; the
// decoded document is returned in Result.Structured.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/agents/toolloop"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/router"
	"github.com/rickchristie/orchestra/schema"
)

// Component is reported in model call events.
const Component = "controller"

// Result is the outcome of one request.
type Result struct {
	Decision *router.Decision
	Answer   string

	// ToolRun is set when the answer came from the tool loop.
	ToolRun *toolloop.Result

	// Structured is the decoded answer when the selected agent has an output schema.
	Structured any
}

// Controller routes a request and has the selected agent answer it.
type Controller struct {
	router      router.Router
	models      orchestra.ModelSet
	loop        *toolloop.Loop
	schemas     map[string]*schema.Schema
	hooks       *hooks.Registry
	callTimeout time.Duration
}

// New creates a controller. models resolves the ModelRef of the selected agent.
func New(r router.Router, models orchestra.ModelSet) *Controller {
	return &Controller{router: r, models: models}
}

// WithToolLoop answers through loop, letting the agent call tools.
func (c *Controller) WithToolLoop(loop *toolloop.Loop) *Controller {
	c.loop = loop
	return c
}

// WithOutputSchema makes the named agent answer with a JSON document matching s. The
// schema is passed to the model with orchestra.WithSchema and the reply is validated
// again here, so models that ignore the option are caught too. Agents with an output
// schema answer with a single call even when a tool loop is set.
func (c *Controller) WithOutputSchema(agent string, s *schema.Schema) *Controller {
	if c.schemas == nil {
		c.schemas = make(map[string]*schema.Schema)
	}
	c.schemas[agent] = s
	return c
}

// WithHooks sets the hook registry used for the answering call.
func (c *Controller) WithHooks(h *hooks.Registry) *Controller {
	c.hooks = h
	return c
}

// WithCallTimeout bounds the answering call. Zero means no bound beyond ctx.
func (c *Controller) WithCallTimeout(d time.Duration) *Controller {
	c.callTimeout = d
	return c
}

// Handle routes request and returns the selected agent's answer. A routing failure is
// returned unchanged, so errors.Is(err, orchestra.ErrDispatchFailure) holds when the
// router could not dispatch. When answering fails, the Result still carries the
// decision. A structured answer that does not match its schema fails with an error
// matching orchestra.ErrSchemaMismatch, and Answer then holds the raw reply.
func (c *Controller) Handle(ctx context.Context, request string) (*Result, error) {
	decision, err := c.router.Route(ctx, request)
	if err != nil {
		return nil, err
	}
	result := &Result{Decision: decision}
	agent := decision.Selected
	output := c.schemas[agent.Name]

	if c.loop != nil && output == nil {
		run, err := c.loop.Run(ctx, request, agent)
		result.ToolRun = run
		if run != nil {
			result.Answer = run.FinalAnswer
		}
		if err != nil {
			return result, fmt.Errorf("controller: agent %q: %w", agent.Name, err)
		}
		return result, nil
	}

	answer, err := c.answer(ctx, agent, request, output)
	if err != nil {
		var mismatch *orchestra.SchemaMismatchError
		if errors.As(err, &mismatch) {
			result.Answer = mismatch.Content
		}
		return result, fmt.Errorf("controller: agent %q: %w", agent.Name, err)
	}
	result.Answer = answer
	if output != nil {
		v, err := output.DecodeJSON(answer)
		if err != nil {
			return result, fmt.Errorf("controller: agent %q: %w", agent.Name,
				&orchestra.SchemaMismatchError{Content: answer, Err: err})
		}
		result.Answer = schema.TrimFence(answer)
		result.Structured = v
	}
	return result, nil
}

func (c *Controller) answer(
	ctx context.Context,
	agent orchestra.AgentSpec,
	request string,
	output *schema.Schema,
) (string, error) {
	model, err := c.models.Resolve(agent.ModelRef)
	if err != nil {
		return "", err
	}
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	messages := []orchestra.Message{
		orchestra.SystemMessage(agent.Persona),
		orchestra.UserMessage(request),
	}
	c.hooks.FireBeforeModelCall(ctx, orchestra.BeforeModelCallEvent{
		Component: Component,
		ModelRef:  agent.ModelRef,
		Messages:  messages,
	})
	var opts []orchestra.InvokeOption
	if output != nil {
		opts = append(opts, orchestra.WithSchema(output.Raw()))
	}
	start := time.Now()
	reply, err := model.Invoke(ctx, messages, opts...)
	c.hooks.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
		Component: Component,
		ModelRef:  agent.ModelRef,
		Messages:  messages,
		Response:  reply,
		Duration:  time.Since(start),
		Error:     err,
	})
	if err != nil {
		return "", err
	}
	if reply == nil {
		return "", errors.New("model returned no message")
	}
	return reply.Content, nil
}
