package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// eventPrinter streams coordinator events to a terminal.
type eventPrinter struct {
	out     io.Writer
	notices bool
	agents  map[string]*color.Color
	other   *color.Color
	bad     *color.Color
	good    *color.Color
}

func newEventPrinter(out io.Writer, notices bool) *eventPrinter {
	return &eventPrinter{
		out:     out,
		notices: notices,
		agents: map[string]*color.Color{
			models.AgentSystem:     color.New(color.FgHiBlack),
			models.AgentPlanner:    color.New(color.FgCyan, color.Bold),
			models.AgentDeveloper:  color.New(color.FgGreen, color.Bold),
			models.AgentTester:     color.New(color.FgYellow, color.Bold),
			models.AgentResearcher: color.New(color.FgMagenta, color.Bold),
		},
		other: color.New(color.FgWhite),
		bad:   color.New(color.FgRed, color.Bold),
		good:  color.New(color.FgBlue),
	}
}

// Print writes one event. Events without a terminal rendering are skipped.
func (p *eventPrinter) Print(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventMessage:
		c := p.agentColor(ev.Message.Agent)
		fmt.Fprintf(p.out, "%s %s\n", c.Sprintf("[%s]", ev.Message.Agent), ev.Message.Message)
	case orchestrator.EventNotice:
		if !p.notices {
			return
		}
		c := p.good
		if ev.Notice.Destructive {
			c = p.bad
		}
		fmt.Fprintf(p.out, "%s %s\n", c.Sprintf("! %s:", ev.Notice.Title), ev.Notice.Description)
	}
}

func (p *eventPrinter) agentColor(agent string) *color.Color {
	if c, ok := p.agents[agent]; ok {
		return c
	}
	return p.other
}

// Consume prints events until the channel is closed.
func (p *eventPrinter) Consume(events <-chan orchestrator.Event) {
	for ev := range events {
		p.Print(ev)
	}
}

// printTasks writes a numbered task list.
func printTasks(out io.Writer, tasks []models.Task) {
	dim := color.New(color.FgHiBlack)
	for i, t := range tasks {
		fmt.Fprintf(out, "%2d. %s %s %s\n", i+1, statusColor(t.Status).Sprintf("%-8s", t.Status), t.Description, dim.Sprintf("(%s)", t.Assignee))
	}
}

func statusColor(s models.TaskStatus) *color.Color {
	switch s {
	case models.TaskStatusComplete:
		return color.New(color.FgGreen)
	case models.TaskStatusReview:
		return color.New(color.FgYellow)
	case models.TaskStatusCoding, models.TaskStatusTesting:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgHiBlack)
	}
}
