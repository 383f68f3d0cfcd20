// Package upnp implements the UPnP SOAP command codec.
//
// A command is an HTTP POST of a fixed SOAP envelope to a service control URL:
//
//	POST /MediaRenderer/AVTransport/Control HTTP/1.1
//	Content-Type: text/xml; charset="utf-8"
//	SOAPACTION: urn:schemas-upnp-org:service:AVTransport:1#Pause
//
//	<?xml version="1.0"?>
//	<s:Envelope ...><s:Body>
//	  <u:Pause xmlns:u="urn:schemas-upnp-org:service:AVTransport:1">
//	    <InstanceID>0</InstanceID><Speed>1</Speed>
//	  </u:Pause>
//	</s:Body></s:Envelope>
//
// The reply wraps its output arguments in <u:{action}Response>. Decode walks
// the token stream once, without lookahead, and returns them as Arguments.
//
// # Escaping
//
// Encode does not escape argument values. Values that may contain '<' or '&'
// must be escaped by the caller.
//
// Decoded values are returned exactly as transmitted. Several Sonos arguments
// (ZoneGroupState, TrackMetaData) carry whole XML documents escaped into the
// text of the element; run them through Unescape before tokenizing.
//
// # Errors
//
// All failures are *Error values. Use IsTransportError, IsMalformedResponse,
// IsMalformedTopology and IsNoDeviceFound to branch on them. There is no
// retry or backoff.
package upnp
