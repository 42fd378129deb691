package voice

import "encoding/xml"

// SpokenPrompt is the message read to the on-call phone when the call connects
const SpokenPrompt = "Hello. You are receiving a support request from the Total Fitness Kiosk. Please assist as soon as possible."

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Say     string   `xml:"Say"`
}

// TwiML returns the XML voice-response document instructing the spoken prompt
func TwiML() []byte {
	doc, err := xml.Marshal(twimlResponse{Say: SpokenPrompt})
	if err != nil {
		// Marshaling a fixed struct cannot fail at runtime
		panic(err)
	}
	return append([]byte(xml.Header), doc...)
}
