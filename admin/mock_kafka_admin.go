package admin

type MockKafkaAdmin struct {
	Topics *MockTopics
}

func NewMockAdmin(topics *MockTopics) *MockKafkaAdmin {
	return &MockKafkaAdmin{Topics: topics}
}

func (m *MockKafkaAdmin) FetchInfo(topics []string) (map[string]*Topic, error) {
	tps := make(map[string]*Topic)
	for _, topic := range topics {
		info, err := m.Topics.Topic(topic)
		if err != nil {
			return nil, err
		}
		tps[topic] = info.Meta
	}

	return tps, nil
}

func (m *MockKafkaAdmin) CreateTopics(topics map[string]*Topic) error {
	for name, topic := range topics {
		if _, err := m.Topics.Topic(name); err == nil {
			continue
		}

		topic.Name = name
		if err := m.Topics.AddTopic(topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockKafkaAdmin) Close() {}
