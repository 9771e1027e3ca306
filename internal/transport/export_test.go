package transport

func (c *DatagramConn) UnexpectedSenders() int {
	return len(c.unexpected)
}
