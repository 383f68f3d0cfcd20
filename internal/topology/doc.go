// Package topology extracts zone group structure from a ZoneGroupState value.
//
// The ZoneGroupTopology service returns the whole household layout as one
// SOAP argument whose text is an escaped XML document:
//
//	<ZoneGroupState>&lt;ZoneGroupState&gt;&lt;ZoneGroups&gt;&lt;ZoneGroup Coordinator=&quot;RINCON_A&quot; ...
//
// After one Unescape pass the embedded document looks like:
//
//	<ZoneGroupState>
//	  <ZoneGroups>
//	    <ZoneGroup Coordinator="RINCON_A" ID="RINCON_A:12">
//	      <ZoneGroupMember UUID="RINCON_A" Location="http://192.168.1.69:1400/xml/device_description.xml" ZoneName="Kitchen" .../>
//	      <ZoneGroupMember UUID="RINCON_B" Location="http://192.168.1.70:1400/xml/device_description.xml" ZoneName="Patio" .../>
//	    </ZoneGroup>
//	  </ZoneGroups>
//	</ZoneGroupState>
//
// Extract scans that document once with a four-state machine:
//
//	seekGroup ──<ZoneGroup>──▶ seekCoordinator ──Coordinator=──▶ inGroupBody
//	    ▲                                                          │   ▲
//	    └──────────────────────</ZoneGroup>────────────────────────┘   │
//	                               <ZoneGroupMember> ▼                  │
//	                                        seekMemberAttrs ──UUID, ZoneName, Location──┘
//
// End of input is only a clean finish in seekGroup. Running out of tokens in
// any other state means the document was cut mid-group and is reported as a
// malformed topology.
package topology
