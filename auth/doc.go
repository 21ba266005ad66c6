// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides capability key generation and validation.

# Capability Keys

Each review session has two independent keys, generated from 32 bytes of
crypto/rand and encoded as unpadded URL-safe base64:

	directorKey, err := auth.GenerateKey()
	voterKey, err := auth.GenerateKey()

The director key grants progression control; the voter key grants scoring
access. Keys are stored on the session row and disclosed exactly once, in
the create-session response.

# Validation

Keys presented by callers are compared against the stored value in constant
time:

	if err := auth.ValidateKey(r.Header.Get("X-Director-Key"), session.DirectorKey); err != nil {
		// 401
	}

There is no derivation or HMAC scheme: keys are pure random capabilities,
so validation is a lookup plus an equality check.
*/
package auth
