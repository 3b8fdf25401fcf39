// Package orchestrator coordinates a devteam session.
//
// The Coordinator owns the planned task list and drives every approved task
// through code generation and testing:
//
//	review -> planning -> coding -> testing -> complete
//
// Remote work (planning, generation, testing, research) is delegated to a
// Flows implementation. After every state transition the Coordinator
// re-evaluates its advance rule once, under its lock, and schedules at most
// one remote call for the task at the current pointer. A task with a call in
// flight is never scheduled again until that call returns.
//
// Example usage:
//
//	coord := orchestrator.New(flows.New(client, nil), orchestrator.WithLogger(logger))
//	if err := coord.SubmitPlan(ctx, "A todo app with auth"); err != nil {
//		return err
//	}
//	coord.ApproveAll()
//	coord.StartDevelopment()
//	_ = coord.WaitIdle(ctx)
package orchestrator
