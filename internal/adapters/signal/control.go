package signal

func (ctl *Controller) handlePing(sess *session) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(sess, resp)
}
