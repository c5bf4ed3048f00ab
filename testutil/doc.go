// Package testutil starts rxkit components for the duration of a test.
//
// Every helper registers a cleanup with testing.T that stops the component,
// so tests only ask for what they need:
//
//	func TestPipeline(t *testing.T) {
//	    io := testutil.IO(t, "io", 4)
//	    single := testutil.Single(t, "main")
//	    // subscribe with SubscribeOn(io).ObserveOn(single)
//	}
//
// Schedulers created here use logger.Nop().
package testutil
