package cmd

import (
	"flag"

	"github.com/etnz/realized/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors are the completions of flags that accept a known set of values.
var flagPredictors = map[string]complete.Predictor{
	"period": predict.Set{"day", "week", "month", "quarter", "year"},
	"format": predict.Set{"md", "html", "json"},
	"a":      predict.Files("*.csv"),
	"config": predict.Files("*.yaml"),
}

// Completion returns the shell completion tree of the registered subcommands.
// A main package calls Completion().Complete(name) before parsing the flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: map[string]complete.Predictor{"config": flagPredictors["config"]},
	}
	for _, e := range commands {
		fs := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(fs)
		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		if _, ok := e.cmd.(*topicCmd); ok {
			sub.Args = topicPredictor()
		}
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictor(f) })
		root.Sub[e.cmd.Name()] = sub
	}
	return root
}

// topicPredictor completes the documentation topics.
func topicPredictor() complete.Predictor {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return predict.Nothing
	}
	return predict.Set(topics)
}

func predictor(f *flag.Flag) complete.Predictor {
	if p, ok := flagPredictors[f.Name]; ok {
		return p
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	return predict.Something
}
