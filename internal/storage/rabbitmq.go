package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"resume-match-go/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageQueue 消息队列接口
type MessageQueue interface {
	// PublishMessage 发布消息到exchange
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error

	// PublishJSON 发布JSON格式消息
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error

	// SetupMatchTopology 声明匹配事件的exchange、队列和绑定
	SetupMatchTopology() error

	// Close 关闭连接
	Close() error
}

// 确保RabbitMQ实现了MessageQueue接口
var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ 提供消息队列功能，承载异步批量匹配请求
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	declared     map[string]bool // 已声明的exchange/queue/binding
	declaredMu   sync.Mutex
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ 创建RabbitMQ客户端
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器 (%s): %w", cfg.URL, err)
	}

	mq := &RabbitMQ{
		conn:     conn,
		declared: make(map[string]bool),
		cfg:      cfg,
	}

	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, poolErr := conn.Channel()
			if poolErr != nil {
				log.Printf("创建RabbitMQ通道失败: %v", poolErr)
				return nil
			}
			return ch
		},
	}

	// 先拿一个通道验证连接可用
	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道")
	}
	mq.putChannel(testCh)

	log.Printf("成功连接到RabbitMQ服务器: %s", cfg.URL)
	return mq, nil
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	ch := r.channelPool.Get()
	if ch == nil {
		newCh, err := r.conn.Channel()
		if err != nil {
			log.Printf("创建新RabbitMQ通道失败: %v", err)
			return nil
		}
		return newCh
	}
	return ch.(*amqp.Channel)
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// SetupMatchTopology 声明匹配事件的exchange、请求队列及其绑定。
// 幂等，可在发布方和消费方各自调用。
func (r *RabbitMQ) SetupMatchTopology() error {
	exchange := r.cfg.MatchEventsExchange
	queue := r.cfg.MatchRequestQueue
	routingKey := r.cfg.MatchNeededRoutingKey
	if exchange == "" || queue == "" || routingKey == "" {
		return fmt.Errorf("匹配事件的exchange、队列和路由键都不能为空")
	}

	if err := r.ensureExchange(exchange, "direct", true); err != nil {
		return err
	}
	if err := r.ensureQueue(queue, true); err != nil {
		return err
	}
	return r.bindQueue(queue, exchange, routingKey)
}

// ensureExchange 确保exchange存在，结果缓存在本地
func (r *RabbitMQ) ensureExchange(exchangeName, exchangeType string, durable bool) error {
	cacheKey := "exchange:" + exchangeName
	r.declaredMu.Lock()
	exists := r.declared[cacheKey]
	r.declaredMu.Unlock()
	if exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName,
		exchangeType,
		durable,
		false, // 自动删除
		false, // 内部专用
		false, // 非阻塞
		nil,
	)
	if err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}

	r.declaredMu.Lock()
	r.declared[cacheKey] = true
	r.declaredMu.Unlock()
	log.Printf("已确保exchange存在: '%s'", exchangeName)
	return nil
}

// ensureQueue 确保队列存在，结果缓存在本地
func (r *RabbitMQ) ensureQueue(queueName string, durable bool) error {
	cacheKey := "queue:" + queueName
	r.declaredMu.Lock()
	exists := r.declared[cacheKey]
	r.declaredMu.Unlock()
	if exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	_, err := ch.QueueDeclare(
		queueName,
		durable,
		false, // 自动删除
		false, // 独占
		false, // 非阻塞
		nil,
	)
	if err != nil {
		return fmt.Errorf("声明队列失败: %w", err)
	}

	r.declaredMu.Lock()
	r.declared[cacheKey] = true
	r.declaredMu.Unlock()
	log.Printf("已确保队列存在: %s", queueName)
	return nil
}

// bindQueue 绑定队列到exchange
func (r *RabbitMQ) bindQueue(queueName, exchangeName, routingKey string) error {
	cacheKey := fmt.Sprintf("binding:%s:%s:%s", exchangeName, queueName, routingKey)
	r.declaredMu.Lock()
	exists := r.declared[cacheKey]
	r.declaredMu.Unlock()
	if exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("绑定队列到exchange失败: %w", err)
	}

	r.declaredMu.Lock()
	r.declared[cacheKey] = true
	r.declaredMu.Unlock()
	log.Printf("已绑定队列 %s 到exchange %s, 路由键: %s", queueName, exchangeName, routingKey)
	return nil
}

// PublishMessage 发布消息到exchange
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	var deliveryMode uint8 = 1 // 非持久化
	if persistent {
		deliveryMode = 2
	}

	return ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // 强制
		false, // 立即
		amqp.Publishing{
			DeliveryMode: deliveryMode,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
}

// PublishJSON 发布JSON格式的消息
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, jsonData, persistent)
}

// PublishMatchRequest 发布一条批量匹配请求，持久化投递
func (r *RabbitMQ) PublishMatchRequest(ctx context.Context, msg *MatchRequestMessage) error {
	if msg == nil {
		return fmt.Errorf("匹配请求消息不能为空")
	}
	return r.PublishJSON(ctx, r.cfg.MatchEventsExchange, r.cfg.MatchNeededRoutingKey, msg, true)
}

// StartMatchRequestConsumer 启动匹配请求消费者。
// handler返回true时Ack，返回false时Nack并重新入队。
// 返回的channel关闭后消费者停止。
func (r *RabbitMQ) StartMatchRequestConsumer(handler func(*MatchRequestMessage) bool) (chan<- struct{}, error) {
	stopCh := make(chan struct{})

	ch := r.getChannel()
	if ch == nil {
		return nil, fmt.Errorf("无法获取RabbitMQ通道")
	}

	prefetchCount := r.cfg.PrefetchCount
	if prefetchCount <= 0 {
		prefetchCount = 10
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}

	deliveries, err := ch.Consume(
		r.cfg.MatchRequestQueue,
		"",    // 消费者标签，留空由server生成
		false, // 自动确认
		false, // 独占
		false, // 非本地
		false, // 非阻塞
		nil,
	)
	if err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	go func() {
		defer r.putChannel(ch)
		defer log.Printf("匹配请求消费者已停止: %s", r.cfg.MatchRequestQueue)

		log.Printf("匹配请求消费者已启动, 队列: %s, 预取数量: %d", r.cfg.MatchRequestQueue, prefetchCount)

		for {
			select {
			case <-stopCh:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					log.Println("RabbitMQ通道已关闭")
					return
				}

				var msg MatchRequestMessage
				if err := json.Unmarshal(delivery.Body, &msg); err != nil {
					log.Printf("解析匹配请求消息失败, 丢弃: %v", err)
					// 格式错误的消息重新入队也无法处理
					if nackErr := delivery.Nack(false, false); nackErr != nil {
						log.Printf("拒绝消息失败: %v", nackErr)
					}
					continue
				}

				if handler(&msg) {
					if err := delivery.Ack(false); err != nil {
						log.Printf("确认消息失败: %v", err)
					}
				} else {
					if err := delivery.Nack(false, true); err != nil {
						log.Printf("拒绝消息失败: %v", err)
					}
				}
			}
		}
	}()

	return stopCh, nil
}
