// Package loader reads source files into core.Document values.
//
// Files are read on a bounded ants worker pool (one worker unless WithWorkers
// says otherwise) and returned in the order their paths were given. Load
// returns only after every read has finished, so the chunking stage never
// sees a partial document set.
//
//	l, err := loader.New(loader.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	defer l.Release()
//
//	docs, err := l.Load(ctx, "./data/events.json")
package loader
