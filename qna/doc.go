// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package qna mirrors Q&A-mode submissions into independently answerable
question records.

# Fanout

When a message arrives through a link in Q&A mode, Mirror creates one
QnA entry referencing the stored message. The mirror is a best-effort side
effect of message receipt: the caller logs a failure and continues, and
the original message is never rolled back because of it.

# Answering

	entry, err := qna.Answer(db, qnaID, ownerID, "my answer")

Only the owner can answer (ErrNotFound otherwise, so entry IDs are not
probeable), an empty answer is ErrInvalidInput, and re-answering replaces
the prior answer_text and answered_at wholesale. answered_at is set iff
answer_text is set; no path clears an answered entry back to unanswered.
*/
package qna
