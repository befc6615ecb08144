package auth

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	qt "github.com/frankban/quicktest"
)

func TestSign(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	// Create a mocked clock that is set to 94 hours ago
	// so that we can test that the timestamp is being set correctly
	// and when we verify the signature, it uses the timestamp from the payload
	mockClock := clock.NewMock()
	mockClock.Set(time.Now())
	mockClock.Add(-94 * time.Hour)

	req, err := SignRequest(testKey, "user123", mockClock)
	c.Assert(err, qt.IsNil, qt.Commentf("got an error signing the request"))
	c.Assert(*req.Timestamp, qt.Equals, mockClock.Now().Unix(), qt.Commentf("timestamp was not now"))

	// Run the payload through the wire format to ensure that it doesn't cause an issue
	retrieved := viaWireFormat(c, req)

	// Move the clock on; verification must only depend on the payload
	mockClock.Set(time.Now())

	keys := KeyLookupFunc(func(identity string) (Key, bool) {
		return testKey, identity == "user123"
	})
	key, err := VerifyRequest(keys, retrieved)
	c.Assert(err, qt.IsNil, qt.Commentf("got an error verifying the request"))
	c.Assert(key.Data, qt.DeepEquals, testKey.Data, qt.Commentf("returned the wrong key"))

	// Re-sign with the retrieved components to check we're deterministic
	resigned, err := SignRequestAt(testKey, retrieved.Identity, *retrieved.Timestamp)
	c.Assert(err, qt.IsNil)
	c.Assert(resigned.Tag, qt.Equals, req.Tag, qt.Commentf("resigned tag does not match"))
}

func TestVerifyRequestFailures(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	keys := KeyLookupFunc(func(identity string) (Key, bool) {
		return testKey, identity == "user123"
	})
	req, err := SignRequestAt(testKey, "user123", 1700000000)
	c.Assert(err, qt.IsNil)

	unknown := *req
	unknown.Identity = "user124"
	_, err = VerifyRequest(keys, &unknown)
	c.Assert(err, qt.ErrorIs, ErrAuthenticationFailed)
	c.Assert(err, qt.ErrorIs, ErrUnknownIdentity)

	later := int64(1700000001)
	replayed := *req
	replayed.Timestamp = &later
	_, err = VerifyRequest(keys, &replayed)
	c.Assert(err, qt.ErrorIs, ErrAuthenticationFailed)

	missing := *req
	missing.Timestamp = nil
	_, err = VerifyRequest(keys, &missing)
	c.Assert(err, qt.ErrorIs, ErrAuthenticationFailed)

	injected := *req
	injected.Identity = "user123|1700000000"
	_, err = VerifyRequest(keys, &injected)
	c.Assert(err, qt.ErrorIs, ErrAuthenticationFailed)
}

func TestSignResponse(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	resp := &ResponsePayload{
		Identity:   "user123",
		Active:     true,
		ExpiresAt:  "2025-01-01T00:00:00Z",
		ServerTime: 1700000100,
	}
	c.Assert(SignResponse(testKey, resp), qt.IsNil)
	c.Assert(resp.Tag, qt.Equals, Tag("e2c1aabb75d35711c7f06094415a933b6c36faaf37f0f03ad35ffd0f751e60f4ccf975137f035d51f788a447117b81172c5ce33db8ba43779356f5470748ee9a"))

	ok, err := VerifyResponse(testKey, resp)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

func TestVerifyResponseTamper(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	genuine := ResponsePayload{
		Identity:   "user123",
		Active:     true,
		ExpiresAt:  "2025-01-01T00:00:00Z",
		ServerTime: 1700000100,
	}
	c.Assert(SignResponse(testKey, &genuine), qt.IsNil)

	var tampered []ResponsePayload
	flip := genuine
	flip.Active = false
	tampered = append(tampered, flip)
	for i := range genuine.ExpiresAt {
		r := genuine
		b := []byte(r.ExpiresAt)
		b[i] ^= 0x01
		r.ExpiresAt = string(b)
		tampered = append(tampered, r)
	}
	for _, delta := range []int64{1, -1, 10, 1000} {
		r := genuine
		r.ServerTime += delta
		tampered = append(tampered, r)
	}

	for i, r := range tampered {
		ok, err := VerifyResponse(testKey, &r)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse, qt.Commentf("tampered response %d verified: %+v", i, r))
	}
}

func TestCheckFreshness(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	mockClock := clock.NewMock()
	mockClock.Set(time.Unix(1700000000, 0))
	window := 5 * time.Minute

	c.Assert(CheckFreshness(mockClock, 1700000000, window), qt.IsNil)
	c.Assert(CheckFreshness(mockClock, 1700000000-300, window), qt.IsNil)
	c.Assert(CheckFreshness(mockClock, 1700000000+300, window), qt.IsNil)
	c.Assert(CheckFreshness(mockClock, 1700000000-301, window), qt.ErrorIs, ErrAuthenticationExpired)
	c.Assert(CheckFreshness(mockClock, 1700000000+301, window), qt.ErrorIs, ErrAuthenticationExpired)
	c.Assert(CheckFreshness(mockClock, 0, 0), qt.IsNil, qt.Commentf("zero window must disable the check"))
}

func TestKeyValidate(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	c.Assert(testKey.Validate(), qt.IsNil)
	c.Assert(NewKey([]byte("short")).Validate(), qt.ErrorIs, ErrInvalidKey)
	c.Assert(testKey.String(), qt.Not(qt.Contains), "SECRET")

	k, err := ParseHexKey("00ff")
	c.Assert(err, qt.IsNil)
	c.Assert(k.Data, qt.DeepEquals, []byte{0x00, 0xff})
	_, err = ParseHexKey("zz")
	c.Assert(err, qt.ErrorIs, ErrInvalidKey)
}

// viaWireFormat is a hack to ensure that the payload is marshalled in the same way as it would be over the wire
// and then unmarshalled back, making sure that the wire format doesn't cause an issue with the signing.
func viaWireFormat(c *qt.C, req *RequestPayload) *RequestPayload {
	data, err := Marshal(req)
	c.Assert(err, qt.IsNil, qt.Commentf("got an error marshalling the payload"))

	var raw map[string]any
	c.Assert(Unmarshal(data, &raw), qt.IsNil)
	c.Assert(raw, qt.HasLen, 3, qt.Commentf("unexpected wire fields: %v", raw))

	out := &RequestPayload{}
	c.Assert(Unmarshal(data, out), qt.IsNil, qt.Commentf("got an error unmarshalling the payload"))
	return out
}
