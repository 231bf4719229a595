package server

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/samuel/go-zookeeper/zk"
	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/services/kafka"
	"github.com/enercheck/compliance-server/services/zookeeper"
)

// Globals
var (
	logger = config.RootLogger
)

// Start starts the server and wires together dependencies.
func Start(conf config.AppConfiguration) error {

	// Block forever until ZK comes online
	blockForRequiredServices(logger, conf)

	app, err := NewAppServer(conf.ServerSettings)
	if err != nil {
		logger.Error("error constructing app server", zap.Error(err))
		return err
	}

	d, dbID, err := dao.NewDataAccessLayer(conf.DatabaseConnection, dao.WithLogger(logger))
	if err != nil {
		logger.Error("error configuring dao. check environment variable settings for EC_DB_*", zap.Error(err))
		return err
	}
	app.RootDAO = d
	logger.Info("database connected", zap.String("identifier", dbID))

	configureEventQueue(app, conf.EventQueue, conf.ZK.Timeout)

	err = connectWithZookeeper(app, conf.ZK.Basepath, conf.ZK.Address, conf.ZK.Timeout, conf.ZK.RetryDelay)
	if err != nil {
		logger.Warn("could not register with zookeeper")
	}

	httpServer := &http.Server{
		Addr:              app.Addr,
		Handler:           app,
		IdleTimeout:       time.Duration(conf.ServerSettings.IdleTimeout) * time.Second,
		ReadTimeout:       time.Duration(conf.ServerSettings.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(conf.ServerSettings.ReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(conf.ServerSettings.WriteTimeout) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	exitChan := make(chan error)
	protocol := "http"
	if conf.ServerSettings.UseTLS {
		protocol = "https"
		tlsConfig := conf.ServerSettings.GetTLSConfig()
		httpServer.TLSConfig = &tlsConfig
		go func() {
			exitChan <- httpServer.ListenAndServeTLS(
				conf.ServerSettings.ServerCertChain, conf.ServerSettings.ServerKey)
		}()
	} else {
		go func() {
			exitChan <- httpServer.ListenAndServe()
		}()
	}

	zkTracking(app, conf)
	TrapSignalsPosix(app.DefaultZK, logger)
	logger.Info("starting server", zap.String("addr", app.Addr), zap.String("protocol", protocol))

	// Announce our new service in ZK.
	err = zookeeper.ServiceAnnouncement(app.DefaultZK, protocol, "ALIVE", conf.ZK.IP, conf.ZK.Port)
	if err != nil {
		logger.Fatal("could not announce self in zk")
	} else {
		logger.Info(
			"registering compliance AppServer with ZK",
			zap.String("ip", conf.ZK.IP),
			zap.String("port", conf.ZK.Port),
			zap.String("zkBasePath", conf.ZK.Basepath),
			zap.String("zkAddress", conf.ZK.Address),
		)
	}

	err = <-exitChan
	return err
}

// configureEventQueue will set a directly-configured Kafka queue on AppServer, or discover one from ZK.
func configureEventQueue(app *AppServer, conf config.EventQueueConfiguration, zkTimeout int64) {
	logger.Info("kafka config", zap.Any("conf", conf))

	if len(conf.KafkaAddrs) == 0 && len(conf.ZKAddrs) == 0 {
		// no configuration still provides null implementation
		app.EventQueue = kafka.NewFakeAsyncProducer(logger)
		return
	}

	help := "review EC_EVENT_ZK_ADDRS or EC_EVENT_KAFKA_ADDRS"

	if len(conf.KafkaAddrs) > 0 {
		logger.Info("using direct connect for kafka queue")
		var err error
		app.EventQueue, err = kafka.NewAsyncProducer(conf.KafkaAddrs, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
		if err != nil {
			logger.Fatal("cannot direct connect to Kafka queue", zap.Error(err), zap.String("help", help))
		}
		return
	}

	if len(conf.ZKAddrs) > 0 {
		logger.Info("attempting to discover kafka queue from zookeeper")
		conn, _, err := zk.Connect(conf.ZKAddrs, time.Duration(zkTimeout)*time.Second)
		if err != nil {
			logger.Fatal("err from zk.Connect", zap.Error(err), zap.String("help", help))
		}
		setter := func(ap *kafka.AsyncProducer) {
			// Don't just reset the conn because a zk event told you to, do an explicit check.
			if app.EventQueue.Reconnect() {
				app.EventQueue = ap
			}
		}
		// Allow time for kafka to be available in zookeeper
		waitTime := 1
		prevWaitTime := 0
		ap, err := kafka.DiscoverKafka(conn, "/brokers/ids", setter, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
		for ap == nil || err != nil {
			logger.Info("kafka was not discovered in zookeeper.", zap.Int("waitTime in seconds", waitTime))
			if waitTime > 600 {
				logger.Error(
					"kafka discovery is taking too long",
					zap.Int("waitTime in Seconds", waitTime),
				)
				break
			}
			time.Sleep(time.Duration(waitTime) * time.Second)
			waitTime = waitTime + prevWaitTime
			prevWaitTime = waitTime
			err = nil
			ap, err = kafka.DiscoverKafka(conn, "/brokers/ids", setter, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
		}
		if err != nil {
			logger.Fatal("error discovering kafka from zk", zap.Error(err), zap.String("help", help))
		}
		logger.Info("kafka discovery successful")
		app.EventQueue = ap
		return
	}
	logger.Error("no Kafka queue configured")
}

func connectWithZookeeperTry(app *AppServer, zkBasePath string, zkAddress string, zkTimeout int64) error {
	// We need the path to our announcements to exist, but not the ephemeral nodes yet
	zkState, err := zookeeper.RegisterApplication(zkBasePath, zkAddress, zkTimeout)
	if err != nil {
		return err
	}
	app.DefaultZK = zkState
	// This pointer assignment will be overwritten if EC_EVENT_ZK_ADDRS is set.
	app.EventQueueZK = zkState
	return nil
}

func connectWithZookeeper(app *AppServer, zkBasePath string, zkAddress string, zkTimeout int64, zkRetryDelay int64) error {
	err := connectWithZookeeperTry(app, zkBasePath, zkAddress, zkTimeout)
	for err != nil {
		sleepInSeconds := int(math.Max(1, math.Min(60, float64(zkRetryDelay))))
		logger.Warn("zk cant register", zap.Int("retry time in seconds", sleepInSeconds))
		time.Sleep(time.Duration(sleepInSeconds) * time.Second)
		err = connectWithZookeeperTry(app, zkBasePath, zkAddress, zkTimeout)
	}
	return err
}

var shutdown = make(chan bool)

func zkKeepalive(app *AppServer, conf config.AppConfiguration) {

	// first run, sleep immediately. Let original ZK code try first.
	warmupTime := int(math.Max(1, math.Min(60, float64(conf.ZK.RetryDelay))))
	time.Sleep(time.Second * time.Duration(warmupTime))

	recheckTime := int(math.Max(1, math.Min(600, float64(conf.ZK.RecheckTime))))
	t := time.NewTicker(time.Duration(time.Second * time.Duration(recheckTime)))

	announcePoint := conf.ZK.Basepath + announceProtocolPath(conf)

	for {
		select {
		case <-t.C:
			if app.DefaultZK != nil {
				logger.Debug("zkKeepalive checking health")
				children, _, err := app.DefaultZK.Conn.Children(announcePoint)
				if err != nil {
					logger.Debug("zkKeepalive health check failure, attempting reconnect")
					connectWithZookeeper(app, conf.ZK.Basepath, conf.ZK.Address, conf.ZK.Timeout, conf.ZK.RetryDelay)
				} else {
					if len(children) > 0 {
						// make sure our ephemeral node exists!
						foundOurself := false
						for _, v := range children {
							if v == config.NodeID {
								foundOurself = true
								break
							}
						}
						if foundOurself {
							logger.Debug("zkKeepalive health check success")
						} else {
							logger.Debug("zkKeepalive health check failed to find our node, attempting reconnect")
							connectWithZookeeper(app, conf.ZK.Basepath, conf.ZK.Address, conf.ZK.Timeout, conf.ZK.RetryDelay)
							zookeeper.DoReAnnouncements(app.DefaultZK, logger)
						}

					} else {
						logger.Debug("zkKeepalive health check failure, no children, including us, at announcement path, attempting reconnect")
						connectWithZookeeper(app, conf.ZK.Basepath, conf.ZK.Address, conf.ZK.Timeout, conf.ZK.RetryDelay)
						zookeeper.DoReAnnouncements(app.DefaultZK, logger)
					}
				}
			} else {
				logger.Error("zkKeepalive saw nil pointer to ZK, attempting reconnect")
				connectWithZookeeper(app, conf.ZK.Basepath, conf.ZK.Address, conf.ZK.Timeout, conf.ZK.RetryDelay)
			}
		case <-shutdown:
			t.Stop()
			return
		}
	}
}

func zkTracking(app *AppServer, conf config.AppConfiguration) {

	go zkKeepalive(app, conf)

	// Log membership changes at our own announce point. A nil handler only
	// logs, which is still enough to see a peer drop or join in the stream.
	zookeeper.TrackAnnouncement(app.DefaultZK, conf.ZK.Basepath+announceProtocolPath(conf), nil)
}

func announceProtocolPath(conf config.AppConfiguration) string {
	if conf.ServerSettings.UseTLS {
		return "/https"
	}
	return "/http"
}

func blockForRequiredServices(l *zap.Logger, conf config.AppConfiguration) {
	l.Info("waiting for zookeeper to come online")
	addrs := strings.Split(conf.ZK.Address, ",")
	zkOnline := zookeeper.IsOnline(addrs)
	<-zkOnline
	l.Info("zookeeper cluster found", zap.String("addrs", conf.ZK.Address))
}
