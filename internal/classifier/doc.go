// Package classifier maps batches of video titles and descriptions onto a
// caller-supplied category list using a chat-completion model.
//
// The model is asked for a JSON array whose length equals the batch length.
// Responses are recovered defensively: fenced blocks are unwrapped, a
// single-key object wrapper is tolerated, and anything else (parse failure,
// length mismatch, transport error) marks the whole batch absent rather than
// guessing at alignment. The package never retries and never caches; pacing
// and retry policy belong to the caller.
package classifier
