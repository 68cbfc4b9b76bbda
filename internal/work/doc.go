// Package work defines the unit-of-work plug-in point shared by every
// execution strategy.
//
// A Unit pairs a blocking Func with an optional suspending AsyncFunc under a
// registry name. In-process strategies call the functions directly. The
// process pool cannot send closures to a child process, so it sends the unit
// name and JSON-encoded items instead, and the child looks the unit up in its
// own Registry:
//
//	reg := work.NewRegistry(logger)
//	work.Register(reg, work.Unit[int, int]{Name: "square", Sync: square})
//
//	// child side
//	work.Serve(ctx, reg, os.Stdin, os.Stdout)
//
// Items and values crossing the process boundary must round-trip through
// encoding/json.
package work
