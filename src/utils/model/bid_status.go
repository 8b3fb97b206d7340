package model

import (
	"database/sql/driver"
	"fmt"
)

type BidStatus string

const (
	BidStatusActive   BidStatus = "active"
	BidStatusOutbid   BidStatus = "outbid"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

func (self BidStatus) String() string {
	return string(self)
}

func (self *BidStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*self = BidStatus(v)
	case []byte:
		*self = BidStatus(v)
	default:
		return fmt.Errorf("unsupported bid status type %T", value)
	}
	return nil
}

func (self BidStatus) Value() (driver.Value, error) {
	return string(self), nil
}
