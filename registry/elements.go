package registry

import "github.com/dhcp6kit/dhcp6d/codec"

// Options is the process-wide Option registry: u16 type code and
// normalized name to constructor.
var Options = NewTable[codec.Option]()

// Messages is the process-wide Message registry, keyed by message type.
var Messages = NewTable[codec.Message]()

// DUIDs is the process-wide DUID registry. The DUID family is closed at
// the codec layer (codec.DecodeDUID switches over the three RFC 3315
// types directly, the same way codec.DecodeMessage closes over message
// types), so this table exists for name<->code lookup by configuration
// and tooling rather than as a parsing dispatch seam.
var DUIDs = NewTable[codec.DUID]()

// NTPSubOptions is the process-wide NTP sub-option registry (RFC 5908).
var NTPSubOptions = NewTable[codec.NTPSubOption]()

func registerOption(code uint16, name string, new func() codec.Option) {
	Options.Register(code, name, new)
}

func init() {
	registerOption(codec.OptionCodeClientID, "ClientID", func() codec.Option { return &codec.ClientIDOption{} })
	registerOption(codec.OptionCodeServerID, "ServerID", func() codec.Option { return &codec.ServerIDOption{} })
	registerOption(codec.OptionCodeIANA, "IANA", func() codec.Option { return &codec.IANAOption{} })
	registerOption(codec.OptionCodeIATA, "IATA", func() codec.Option { return &codec.IATAOption{} })
	registerOption(codec.OptionCodeIAAddr, "IAAddress", func() codec.Option { return &codec.IAAddressOption{} })
	registerOption(codec.OptionCodeORO, "OptionRequest", func() codec.Option { return &codec.OptionRequestOption{} })
	registerOption(codec.OptionCodePreference, "Preference", func() codec.Option { return &codec.PreferenceOption{} })
	registerOption(codec.OptionCodeElapsedTime, "ElapsedTime", func() codec.Option { return &codec.ElapsedTimeOption{} })
	registerOption(codec.OptionCodeRelayMsg, "RelayMessage", func() codec.Option { return &codec.RelayMessageOption{} })
	registerOption(codec.OptionCodeAuth, "Auth", func() codec.Option { return &codec.AuthOption{} })
	registerOption(codec.OptionCodeUnicast, "ServerUnicast", func() codec.Option { return &codec.ServerUnicastOption{} })
	registerOption(codec.OptionCodeStatusCode, "StatusCode", func() codec.Option { return &codec.StatusCodeOption{} })
	registerOption(codec.OptionCodeRapidCommit, "RapidCommit", func() codec.Option { return &codec.RapidCommitOption{} })
	registerOption(codec.OptionCodeUserClass, "UserClass", func() codec.Option { return &codec.UserClassOption{} })
	registerOption(codec.OptionCodeVendorClass, "VendorClass", func() codec.Option { return &codec.VendorClassOption{} })
	registerOption(codec.OptionCodeVendorOpts, "VendorOpts", func() codec.Option { return &codec.VendorOptsOption{} })
	registerOption(codec.OptionCodeInterfaceID, "InterfaceID", func() codec.Option { return &codec.InterfaceIDOption{} })
	registerOption(codec.OptionCodeReconfMsg, "ReconfigureMessage", func() codec.Option { return &codec.ReconfigureMessageOption{} })
	registerOption(codec.OptionCodeReconfAccept, "ReconfigureAccept", func() codec.Option { return &codec.ReconfigureAcceptOption{} })

	registerOption(codec.OptionCodeSIPServerD, "SIPServerDomainNameList", func() codec.Option { return &codec.SIPServerDomainNameListOption{} })
	registerOption(codec.OptionCodeSIPServerA, "SIPServerAddressList", func() codec.Option { return &codec.SIPServerAddressListOption{} })
	registerOption(codec.OptionCodeDNSServers, "DNSRecursiveNameServers", func() codec.Option { return &codec.DNSRecursiveNameServersOption{} })
	registerOption(codec.OptionCodeDomainList, "DomainSearchList", func() codec.Option { return &codec.DomainSearchListOption{} })
	registerOption(codec.OptionCodeIAPD, "IAPD", func() codec.Option { return &codec.IAPDOption{} })
	registerOption(codec.OptionCodeIAPrefix, "IAPrefix", func() codec.Option { return &codec.IAPrefixOption{} })
	registerOption(codec.OptionCodeSNTPServers, "SNTPServers", func() codec.Option { return &codec.SNTPServersOption{} })

	registerOption(codec.OptionCodeRemoteID, "RemoteID", func() codec.Option { return &codec.RemoteIDOption{} })
	registerOption(codec.OptionCodeSubscriberID, "SubscriberID", func() codec.Option { return &codec.SubscriberIDOption{} })
	registerOption(codec.OptionCodeEchoRequest, "EchoRequest", func() codec.Option { return &codec.EchoRequestOption{} })

	registerOption(codec.OptionCodeLQQuery, "LQQuery", func() codec.Option { return &codec.LQQueryOption{} })
	registerOption(codec.OptionCodeClientData, "ClientData", func() codec.Option { return &codec.ClientDataOption{} })
	registerOption(codec.OptionCodeCLTTime, "CLTTime", func() codec.Option { return &codec.CLTTimeOption{} })
	registerOption(codec.OptionCodeLQRelayData, "LQRelayData", func() codec.Option { return &codec.LQRelayDataOption{} })
	registerOption(codec.OptionCodeLQClientLink, "LQClientLink", func() codec.Option { return &codec.LQClientLinkOption{} })
	registerOption(codec.OptionCodeRelayID, "RelayID", func() codec.Option { return &codec.RelayIDOption{} })

	registerOption(codec.OptionCodeNTPServer, "NTPServer", func() codec.Option { return &codec.NTPServerOption{} })
	registerOption(codec.OptionCodePDExclude, "PDExclude", func() codec.Option { return &codec.PDExcludeOption{} })
	registerOption(codec.OptionCodeClientLinkLayerAddr, "ClientLinkLayerAddress", func() codec.Option { return &codec.ClientLinkLayerAddressOption{} })
	registerOption(codec.OptionCodeSolMaxRT, "SolMaxRT", func() codec.Option { return &codec.SolMaxRTOption{} })
	registerOption(codec.OptionCodeInfMaxRT, "InfMaxRT", func() codec.Option { return &codec.InfMaxRTOption{} })

	NTPSubOptions.Register(codec.NTPSubOptionSrvAddr, "NTPSubOptionServerAddress", func() codec.NTPSubOption { return &codec.NTPSubOptionServerAddress{} })
	NTPSubOptions.Register(codec.NTPSubOptionMCAddr, "NTPSubOptionMulticastAddress", func() codec.NTPSubOption { return &codec.NTPSubOptionMulticastAddress{} })
	NTPSubOptions.Register(codec.NTPSubOptionSrvFQDN, "NTPSubOptionServerFQDN", func() codec.NTPSubOption { return &codec.NTPSubOptionServerFQDN{} })

	Messages.Register(uint16(codec.MessageTypeSolicit), "Solicit", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeSolicit}
	})
	Messages.Register(uint16(codec.MessageTypeAdvertise), "Advertise", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeAdvertise}
	})
	Messages.Register(uint16(codec.MessageTypeRequest), "Request", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeRequest}
	})
	Messages.Register(uint16(codec.MessageTypeConfirm), "Confirm", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeConfirm}
	})
	Messages.Register(uint16(codec.MessageTypeRenew), "Renew", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeRenew}
	})
	Messages.Register(uint16(codec.MessageTypeRebind), "Rebind", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeRebind}
	})
	Messages.Register(uint16(codec.MessageTypeReply), "Reply", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}
	})
	Messages.Register(uint16(codec.MessageTypeRelease), "Release", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeRelease}
	})
	Messages.Register(uint16(codec.MessageTypeDecline), "Decline", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeDecline}
	})
	Messages.Register(uint16(codec.MessageTypeReconfigure), "Reconfigure", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeReconfigure}
	})
	Messages.Register(uint16(codec.MessageTypeInformationRequest), "InformationRequest", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeInformationRequest}
	})
	Messages.Register(uint16(codec.MessageTypeRelayForward), "RelayForward", func() codec.Message {
		return &codec.RelayForwardMessage{}
	})
	Messages.Register(uint16(codec.MessageTypeRelayReply), "RelayReply", func() codec.Message {
		return &codec.RelayReplyMessage{}
	})
	Messages.Register(uint16(codec.MessageTypeLeasequery), "Leasequery", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequery}
	})
	Messages.Register(uint16(codec.MessageTypeLeasequeryReply), "LeasequeryReply", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryReply}
	})
	Messages.Register(uint16(codec.MessageTypeLeasequeryDone), "LeasequeryDone", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryDone}
	})
	Messages.Register(uint16(codec.MessageTypeLeasequeryData), "LeasequeryData", func() codec.Message {
		return &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryData}
	})

	DUIDs.Register(uint16(codec.DUIDTypeLLT), "DUIDLLT", func() codec.DUID { return &codec.DUIDLLT{} })
	DUIDs.Register(uint16(codec.DUIDTypeEN), "DUIDEN", func() codec.DUID { return &codec.DUIDEN{} })
	DUIDs.Register(uint16(codec.DUIDTypeLL), "DUIDLL", func() codec.DUID { return &codec.DUIDLL{} })
}
