package sqlinline

const QSelectCRMCampaignDoc = `--sql b141a9f1-5271-458c-b43d-f2a843506d3b
select to_jsonb(c)
from crm_campaigns c
where c.name = $1::text;
`

const QListDispatchableEmailCampaigns = `--sql 23b4734b-61c7-4b1d-92af-d1fec86a1ac6
select name, campaign_name, email_campaign_for, recipient, sender, start_date, status
from email_campaigns
where status not in ('Unsubscribed', 'Completed', 'Scheduled')
order by name asc;
`

const QSelectEmailCampaignForDispatch = `--sql 10f4b7f3-c292-40a2-8769-e8a088ddda28
select name, campaign_name, email_campaign_for, recipient, sender, start_date, status
from email_campaigns
where name = $1::text and status <> 'Unsubscribed';
`

const QListCampaignSchedules = `--sql 8137c35b-51f0-4d7f-9a45-f1d8c5740b66
select idx, email_template, send_after_days
from campaign_schedules
where parent = $1::text
order by idx asc;
`

const QSelectEmailGroupTotal = `--sql 5a4736d8-89ba-411e-98f1-6782fadbf0d0
select total_subscribers
from email_groups
where name = $1::text;
`

const QSelectLeadContact = `--sql abeb57f7-16fa-43d2-b60c-e8e284ffdbc5
select coalesce(email, ''), unsubscribed
from crm_leads
where name = $1::text;
`

const QSelectContactEmail = `--sql 7d2e9c41-5b8a-4f36-a0c2-93e1f4b6d857
select coalesce(email_id, ''), unsubscribed
from contacts
where name = $1::text;
`

const QListEmailGroupRecipients = `--sql c2c0474c-2311-4bf4-b599-8bc3270ac7b9
select email
from email_group_members
where email_group = $1::text and not unsubscribed
order by email asc;
`

const QSelectEmailGroupMember = `--sql 685cd6ac-5c55-4717-9f1c-200775d62ba4
select email_group, email
from email_group_members
where name::text = $1::text
for update;
`

const QMoveEmailGroupMember = `--sql 3fe93e2a-9490-4812-8019-0fb4e4e9473f
update email_group_members
set email_group = $2::text
where name::text = $1::text;
`

const QRefreshEmailGroupTotal = `--sql d524569b-96a1-4612-abd2-8c5c3b69677c
update email_groups g
set total_subscribers = (
    select count(*) from email_group_members m
    where m.email_group = g.name and not m.unsubscribed
)
where g.name = $1::text
returning total_subscribers;
`

const QUnsubscribeEmailGroupMember = `--sql 3c638ce3-8941-4015-b9d7-84d17d94d25c
update email_group_members
set unsubscribed = true
where email_group = $1::text and lower(email) = lower($2::text);
`

const QEmailUnsubscribed = `--sql cf82f63a-fe9b-4b6d-bd1a-20ee5755a69f
select exists(select 1 from email_group_members where lower(email) = lower($1::text) and unsubscribed)
    or exists(select 1 from donors where lower(email) = lower($1::text) and unsubscribed)
    or exists(select 1 from crm_leads where lower(email) = lower($1::text) and unsubscribed)
    or exists(select 1 from contacts where lower(email_id) = lower($1::text) and unsubscribed);
`

const QSelectEmailTemplate = `--sql 8b91add1-4b81-4154-a379-5c18c76a0173
select name, subject, response
from email_templates
where name = $1::text;
`

const QInsertCommunication = `--sql d60fdf1e-4c46-4444-bbba-d8535525a598
insert into communications(
  name, reference_doctype, reference_name, communication_type, communication_date,
  subject, content, sender, recipients, delivery_status, creation
)
values (gen_random_uuid(), $1::text, $2::text, 'Communication', now(),
        $3::text, $4::text, $5::text, $6::text, $7::text, now());
`
