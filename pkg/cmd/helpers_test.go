package cmd

import "errors"

var errAlreadyReplied = errors.New("already replied")

// fakeContext records replies. With once set it behaves like an interaction
// that accepts a single response.
type fakeContext struct {
	once    bool
	replies []string
	failure error
}

func (f *fakeContext) Reply(content string) error {
	if f.failure != nil {
		return f.failure
	}
	if f.once && len(f.replies) > 0 {
		return errAlreadyReplied
	}
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeContext) Replied() bool { return f.once && len(f.replies) > 0 }

// otherContext satisfies Context but is a distinct concrete type.
type otherContext struct{ fakeContext }
