// Package tui provides the interactive terminal interface for devteam.
//
// The App model drives an orchestrator.Coordinator through the Controller
// interface. It shows an idea input, the planned tasks with their status, the
// team chat log, a stats bar and the latest notice. Coordinator events are forwarded into
// the program as CoordinatorEventMsg values; every event and refresh tick
// re-reads the coordinator snapshot, so dropped events only delay a redraw.
//
// Usage:
//
//	program, app := tui.NewProgram(ctx, coordinator, tui.Options{})
//	go tui.ForwardEvents(program, coordinator.Events())
//	_, err := program.Run()
//
// Keys, with the task list focused:
//
//	a / A   approve task / approve all
//	r       reject with feedback
//	g       replace the description with guidance
//	s       start development
//	p       pause or resume
//	c t f   generate, test or research the selected task
//	d       download the combined code
//	tab     switch between the idea input and the task list
//	q       quit
package tui
