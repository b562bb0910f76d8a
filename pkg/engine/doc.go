// Package engine assembles a complete taskmill run: it builds the inbound
// and per-processor blocking queues, starts the processor pool and the
// scheduler, replays the producer events, and tears everything down
// through the sentinel shutdown protocol before reporting per-processor
// timings.
//
//	events, _ := feed.Parse("ABCD5AB5CD5A9B9CDABCD")
//	eng, _ := engine.New(engine.Config{Processors: 4})
//	report, _ := eng.Run(context.Background(), events)
package engine
