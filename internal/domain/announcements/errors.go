package announcements

import "errors"

var ErrInvalidAnnouncement = errors.New("invalid announcement")
