// Package newsbrief turns a batch of financial news articles into a ranked
// brief using generative backends that may refuse, fail or answer in the
// wrong shape.
//
// The root package holds the shared data model ([Article], [NewsType],
// [Impact], [Provider]) and the error taxonomy every layer reports with.
// The engine itself lives in subpackages:
//
//   - catalog: parses backend identifiers and ranks them into fast and
//     standard fallback chains
//   - backend: adapters for Gemini, OpenAI and Anthropic behind one
//     Submit call, with outcome classification
//   - dispatch: walks a chain with per-backend retries until one backend
//     answers
//   - extract: builds prompts, validates answers against output contracts
//     and retries with stricter wording
//   - pipeline: the daily and weekly brief built from the extractors
//   - store, report: article persistence and digest publishing
//   - client: assembles all of the above from configuration
//
// # Basic Usage
//
//	c, err := client.New(client.Config{
//	    APIKeys: client.APIKeys{Google: os.Getenv("GOOGLE_API_KEY")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := pipeline.New(c.Extractor(), nil).Run(ctx, articles,
//	    pipeline.DefaultOptions(pipeline.ModeDaily))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range newsbrief.NewsTypes {
//	    fmt.Println(t, res.Top[t])
//	}
//
// # Error Handling
//
// Two failures are fatal to a call and are matched with errors.Is:
//
//   - [ErrBackendsExhausted]: every backend in the chain refused or failed
//   - [ErrValidationExhausted]: answers arrived but none satisfied the
//     output contract within the attempt budget
//
// Empty input is reported as [ErrEmptyInput]. Provider errors are wrapped
// in [*Error] with a category:
//
//	if newsbrief.IsTransient(err) {
//	    // rate limited or temporarily unavailable
//	}
//	var rej *newsbrief.RejectedError
//	if errors.As(err, &rej) {
//	    log.Printf("%s refused: %s", rej.Backend, rej.Reason)
//	}
package newsbrief
