package zookeeper

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	globalconfig "github.com/enercheck/compliance-server/config"
	"github.com/samuel/go-zookeeper/zk"
	"go.uber.org/zap"
)

var (
	logger = globalconfig.RootLogger
)

// PermissiveACL is the open ACL applied to every node we create.
var PermissiveACL = zk.WorldACL(zk.PermAll)

// AnnouncementRequest is information required to re-invoke announcements
type AnnouncementRequest struct {
	protocol string
	stat     string
	host     string
	port     string
}

// ZKState is everything about zookeeper that we might need to know
type ZKState struct {
	// ZKAddress is the set of host:port that zk will try to connect to
	ZKAddress string
	// Conn is the open zookeeper connection
	Conn *zk.Conn
	// Protocols live under this path in zk
	Protocols string
	// Announcements
	AnnouncementRequests []AnnouncementRequest
}

// AnnounceHandler is a callback when zk data changes
type AnnounceHandler func(mountPoint string, announcements map[string]AnnounceData)

// AnnounceData models the data written to a Zookeeper ephemeral node.
type AnnounceData struct {
	ServiceEndpoint Address `json:"serviceEndpoint"`
	Status          string  `json:"status"`
}

// Address models a host + port combination.
type Address struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Put in a new level in the tree.
// this really only wraps up Create to handle non-existence cleanly.
func makeNewNode(conn *zk.Conn, pathType, prevPath, appendPath string, flags int32, data []byte) (string, error) {
	newPath := prevPath + "/" + appendPath
	exists, _, err := conn.Exists(newPath)
	if err != nil {
		return newPath, err
	}
	zlogger := logger.With(
		zap.String("pathtype", pathType),
		zap.String("newpath", newPath),
		zap.String("appendpath", appendPath),
	)
	if !exists {
		zlogger.Info("zk create")
		_, err = conn.Create(newPath, data, flags, PermissiveACL)
		if err != nil {
			return newPath, err
		}
	} else {
		zlogger.Info("zk exists")
	}
	return newPath, nil
}

// RegisterApplication registers the engine's directory hierarchy in
// zookeeper. The URI is an arbitrary depth path and every level is created
// as a permanent node:
//
//  /services            - organization level grouping
//    /enercheck         - the application
//      /1.0             - a version for the application
//
//  Under this mount point we make service announcements (json data) for each
//  protocol that this version of the service exposes:
//
//    /https
//        /8d2ec01a  - json with the host and port of a member
//        /f31b9ca4  ...
//
//    {"serviceEndpoint":{"host":"192.168.99.100","port":4430},"status":"ALIVE"}
//
//  The member nodes are ephemeral so that they clean out when the service dies.
//
func RegisterApplication(zkURI, zkAddress string, zkTimeout int64) (*ZKState, error) {

	addrs := strings.Split(zkAddress, ",")

	zlogger := logger.With(
		zap.String("uri", zkURI),
		zap.String("address", zkAddress),
	)
	zlogger.Info("zk connect", zap.Int64("timeout", zkTimeout))

	conn, _, err := zk.Connect(addrs, time.Second*time.Duration(zkTimeout))
	if err != nil {
		return &ZKState{}, err
	}

	parts := splitPath(zkURI)
	if len(parts) == 0 {
		conn.Close()
		return &ZKState{}, errors.New("zk base path is empty")
	}
	zkURI = "/" + strings.Join(parts, "/")
	zlogger.Info("zk full URI setting", zap.String("zkuri", zkURI))

	zkState := ZKState{
		ZKAddress:            zkAddress,
		Conn:                 conn,
		Protocols:            zkURI,
		AnnouncementRequests: make([]AnnouncementRequest, 0),
	}

	// Create uncreated levels of the hierarchy, logging modifications we made
	var emptyData []byte
	var newPath string
	for _, part := range parts {
		newPath, err = makeNewNode(conn, "path", newPath, part, 0, emptyData)
		if err != nil {
			return &zkState, err
		}
	}

	return &zkState, nil
}

func splitPath(zkURI string) []string {
	var parts []string
	for _, p := range strings.Split(zkURI, "/") {
		p = strings.TrimSpace(p)
		if len(p) > 0 {
			parts = append(parts, p)
		}
	}
	return parts
}

// IsOnline returns a channel that receives once any node of the Zookeeper
// cluster accepts a connection with a session. Callers block on the channel
// to hold startup until coordination is available.
func IsOnline(addrs []string) chan bool {
	online := make(chan bool, 1)
	go func() {
		for {
			conn, _, err := zk.Connect(addrs, time.Second*5)
			if err == nil {
				for i := 0; i < 20; i++ {
					if conn.State() == zk.StateHasSession {
						conn.Close()
						online <- true
						return
					}
					time.Sleep(250 * time.Millisecond)
				}
				conn.Close()
			}
			logger.Info("zk cluster not reachable yet", zap.Any("addrs", addrs))
			time.Sleep(time.Second)
		}
	}()
	return online
}

// TrackAnnouncement will call handler every time there is a membership change
// Ex:
//      /services/enercheck/1.0/https -> [8d2ec01a -> {192.168.3.5:4430,...}]
//
// This will give the *full* membership for that entity, including ourselves.
//
func TrackAnnouncement(z *ZKState, at string, handler AnnounceHandler) {
	go trackMountLoop(z, at, handler)
}

// put a watch on the existence of this node
func trackMountLoop(z *ZKState, at string, handler AnnounceHandler) {
	zlogger := logger.With(zap.String("zk watch", at))
	// Whenever we exit back out to here, do another existence check before
	// attempting to trackAnnouncementsLoop
	for {
		zlogger.Info("zk mount check")
		exists, _, existsEvents, err := z.Conn.ExistsW(at)
		if err != nil {
			zlogger.Error(
				"zk watch exist error",
				zap.String("err", err.Error()),
			)
		} else {
			if exists {
				trackAnnouncementsLoop(z, at, handler)
			} else {
				zlogger.Info("zk mount check again")
				// it doesnt exist yet, and no error.  wait until this changes
				ev := <-existsEvents
				if ev.Err != nil {
					zlogger.Error(
						"zk event error",
						zap.String("err", ev.Err.Error()),
					)
				}
			}
		}
	}
}

// GetAnnouncements gets the most recent announcement
func GetAnnouncements(z *ZKState, at string) (map[string]AnnounceData, error) {
	zlogger := logger.With(zap.String("zk watch", at))
	children, _, err := z.Conn.Children(at)
	if err != nil {
		zlogger.Error(
			"zk watch child error",
			zap.String("err", err.Error()),
		)
		return nil, nil
	}
	announcements := make(map[string]AnnounceData)
	for _, p := range children {
		thisChild := at + "/" + p
		data, _, err := z.Conn.Get(thisChild)
		if err != nil {
			zlogger.Error(
				"error getting data on peer",
				zap.String("peer", p),
				zap.String("err", err.Error()),
			)
			return nil, err
		}
		var serviceAnnouncement AnnounceData
		json.Unmarshal(data, &serviceAnnouncement)
		announcements[thisChild] = serviceAnnouncement
	}
	return announcements, err
}

// Once the announce point exists, we can track it.
// When it returns, we still need to make sure that the zk node exists, as the
// error could be caused by a removed zk node
func trackAnnouncementsLoop(z *ZKState, at string, handler AnnounceHandler) {
	zlogger := logger.With(zap.String("zk watch", at))
	ok := true
	for {
		zlogger.Info("zk announcement check")
		children, _, childrenEvents, err := z.Conn.ChildrenW(at)
		if err != nil {
			zlogger.Error(
				"zk watch child error",
				zap.String("err", err.Error()),
			)
			ok = false
		}
		announcements := make(map[string]AnnounceData)
		for _, p := range children {
			thisChild := at + "/" + p
			data, _, err := z.Conn.Get(thisChild)
			if err != nil {
				zlogger.Error(
					"error getting data on peer",
					zap.String("peer", p),
					zap.String("err", err.Error()),
				)
				ok = false
			} else {
				var serviceAnnouncement AnnounceData
				json.Unmarshal(data, &serviceAnnouncement)
				announcements[thisChild] = serviceAnnouncement
			}
		}
		zlogger.Info("zk membership change", zap.Any("announcements", announcements))
		if handler != nil {
			handler(at, announcements)
		}
		// blocks until it changes
		ev := <-childrenEvents
		if ev.Err != nil {
			zlogger.Error(
				"zk event error",
				zap.String("err", ev.Err.Error()),
			)
			ok = false
		}
		// Something is messed up.  Re-register our announcements to make things ok to try again.
		if !ok {
			DoReAnnouncements(z, zlogger)
			ok = true
		}
	}
}

// ServiceStop closes the zookeeper connection so our ephemeral announcements
// drop out of the cluster and peers stop routing to us.
func ServiceStop(zkState *ZKState, logger *zap.Logger) {
	if zkState == nil || zkState.Conn == nil {
		return
	}
	logger.Info("zk disconnecting", zap.String("address", zkState.ZKAddress))
	zkState.Conn.Close()
}

// DoReAnnouncements replays every remembered announcement, recreating our
// ephemeral nodes after a session loss or watch failure.
func DoReAnnouncements(zkState *ZKState, logger *zap.Logger) {
	for _, a := range zkState.AnnouncementRequests {
		err := ServiceReAnnouncement(zkState, a.protocol, a.stat, a.host, a.port)
		if err != nil {
			logger.Error(
				"zk re announce service", zap.Any("reannouncement", a), zap.String("err", err.Error()),
			)
		}
	}
}

// ServiceAnnouncement is same as ServiceReAnnouncement with remembering for re-register later
func ServiceAnnouncement(zkState *ZKState, protocol string, stat, host string, port string) error {
	aReq := AnnouncementRequest{
		protocol: protocol,
		stat:     stat,
		host:     host,
		port:     port,
	}
	zkState.AnnouncementRequests = append(zkState.AnnouncementRequests, aReq)
	return ServiceReAnnouncement(zkState, protocol, stat, host, port)
}

// ServiceReAnnouncement ensures that a node for this protocol exists
// and this member is represented with an announcement
//  It creates a node with protocol name and our node id
//
//    https/8d2ec01a
//
// Containing the announcement.
// When our service dies, this node goes away.
//
func ServiceReAnnouncement(zkState *ZKState, protocol string, stat, host string, port string) error {
	intPort, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port could not be parsed as int")
	}

	// Turn this into a raw json announcement
	aData := AnnounceData{
		Status: stat,
		ServiceEndpoint: Address{
			Host: host,
			Port: intPort,
		},
	}

	asBytes, err := json.Marshal(aData)
	if err != nil {
		logger.Error("ServiceAnnouncement could not marshal AnnounceData", zap.String("err", err.Error()))
		return err
	}

	// Ensure that a node exists for our protocol - effectively permanent
	var emptyData []byte
	newPath, err := makeNewNode(zkState.Conn, "protocols", zkState.Protocols, protocol, 0, emptyData)
	if err == nil {
		// Register a member with our data. We must reuse the node id assigned
		// at startup so the keepalive can find our own announcement.
		newPath, err = makeNewNode(zkState.Conn, "announcement", newPath, globalconfig.NodeID, zk.FlagEphemeral, asBytes)
		logger.Info("zk our address", zap.String("ip", host), zap.Int("port", intPort))
	}
	return err
}
