// Package ideaboard is a Go client for the ideaboard HTTP API.
//
// # Requests
//
//	client, _ := ideaboard.New("http://localhost:8080", ideaboard.WithAPIKey(key))
//	idea, _ := client.CreateIdea(ctx, ideaboard.IdeaInput{
//	    Title:    "Dark mode",
//	    Problem:  "The white theme is painful at night",
//	    Category: "ux",
//	})
//	thread, _ := client.Thread(ctx, idea.ID)
//
// # Suggestions while typing
//
// Suggester debounces keystrokes, cancels lookups that a newer keystroke made
// obsolete and only delivers the result for the latest text:
//
//	s := ideaboard.NewSuggester(client, func(sg ideaboard.Suggestion) {
//	    render(sg.Matches)
//	})
//	defer s.Close()
//	s.Update(draft) // on every change of the draft
package ideaboard
