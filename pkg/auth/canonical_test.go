package auth

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRequestMessage(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	msg, err := RequestMessage("user123", 1700000000, RequestPath)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.String(), qt.Equals, "user123|1700000000|/check_status")
}

func TestResponseMessage(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	msg, err := ResponseMessage("user123", true, "2025-01-01T00:00:00Z", 1700000100, ResponsePath)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.String(), qt.Equals, "user123|1|2025-01-01T00:00:00Z|1700000100|/check_status_response")

	msg, err = ResponseMessage("user123", false, "2025-01-01T00:00:00Z", 1700000100, ResponsePath)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.String(), qt.Equals, "user123|0|2025-01-01T00:00:00Z|1700000100|/check_status_response")
}

func TestRequestMessageFieldOrder(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	msg, err := RequestMessage("user123", 1700000000, RequestPath)
	c.Assert(err, qt.IsNil)
	swapped := CanonicalMessage("1700000000|user123|/check_status")
	c.Assert(msg.String(), qt.Not(qt.Equals), swapped.String())

	tag, err := ComputeTag(testKey, msg)
	c.Assert(err, qt.IsNil)
	swappedTag, err := ComputeTag(testKey, swapped)
	c.Assert(err, qt.IsNil)
	c.Assert(TagsEqual(tag, swappedTag), qt.IsFalse, qt.Commentf("field order did not change the tag"))
}

func TestRequestAndResponsePathsDiffer(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	c.Assert(RequestPath, qt.Not(qt.Equals), ResponsePath)
}

func TestMessageRejectsSeparator(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	_, err := RequestMessage("user|123", 1700000000, RequestPath)
	c.Assert(err, qt.ErrorIs, ErrFieldContainsSeparator)

	_, err = RequestMessage("user123", 1700000000, "/check|status")
	c.Assert(err, qt.ErrorIs, ErrFieldContainsSeparator)

	_, err = ResponseMessage("user123", true, "2025|01", 1700000100, ResponsePath)
	c.Assert(err, qt.ErrorIs, ErrFieldContainsSeparator)
}

func TestNegativeTimestampRendering(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	msg, err := RequestMessage("user123", -5, RequestPath)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.String(), qt.Equals, "user123|-5|/check_status")

	msg, err = RequestMessage("user123", 0, RequestPath)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.String(), qt.Equals, "user123|0|/check_status")
}
